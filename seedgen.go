// Package seedgen compiles CSV seed templates into a single transactional
// SQL script.
//
// Each template is mapped to a target table. Mapping order is dependency
// order: parent tables come before the tables that reference them, and the
// generated script keeps that order exactly, followed by CSV row order within
// each file.
//
// # Quick Start
//
// With no options, Generate reads the built-in templates from docs/templates
// and writes docs/generated_seed.sql:
//
//	err := seedgen.Generate(nil, nil)
//
// # Output
//
// The script is one statement per line:
//
//	BEGIN;
//	INSERT INTO public.t (id, name) VALUES ('1', 'O''Brien');
//	INSERT INTO public.t (id, name) VALUES ('2', NULL);
//	COMMIT;
//
// Empty values become NULL. Every other value is a quoted string literal;
// no type coercion is attempted.
//
// Multi-file output writes one complete script per table:
//
//	&seedgen.OutputOptions{OutputDir: "docs/seed"}
package seedgen

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tordrt/seedgen/internal/formatter"
	"github.com/tordrt/seedgen/internal/reader"
	"github.com/tordrt/seedgen/internal/seed"
)

const (
	// DefaultTemplatesDir is where templates are read from, relative to the working directory
	DefaultTemplatesDir = "docs/templates"

	// DefaultOutputPath is where the script is written, relative to the working directory
	DefaultOutputPath = "docs/generated_seed.sql"

	// StdoutPath as an output path writes the script to standard output
	StdoutPath = "-"
)

// DefaultTables returns the built-in mapping in dependency order.
func DefaultTables() []seed.Mapping {
	return []seed.Mapping{
		{File: "auth_users.csv", Table: "auth.users"},
		{File: "profiles.csv", Table: "public.profiles"},
		{File: "account_manager_cities.csv", Table: "public.account_manager_cities"},
		{File: "requests.csv", Table: "public.requests"},
		{File: "request_assignments.csv", Table: "public.request_assignments"},
	}
}

// Options configures which templates are read and how statements are rendered.
//
// All fields are optional:
//   - TemplatesDir: defaults to DefaultTemplatesDir
//   - Tables: nil uses DefaultTables
//   - Only: nil keeps every mapped table
//   - ExcludeTables: empty excludes nothing
type Options struct {
	// TemplatesDir is the directory holding the CSV templates.
	TemplatesDir string

	// Tables is the ordered file-to-table mapping.
	Tables []seed.Mapping

	// Only restricts generation to these target tables. Mapping order is kept.
	Only []string

	// ExcludeTables drops these target tables from generation.
	ExcludeTables []string

	// QuoteIdentifiers emits table and column names as quoted identifiers.
	QuoteIdentifiers bool
}

// OutputOptions configures where the script goes.
//
// OutputDir takes precedence over Writer, and Writer over Path. If none is
// set the script is written to DefaultOutputPath.
type OutputOptions struct {
	// Path is the output file. StdoutPath writes to os.Stdout.
	// The file is replaced atomically.
	Path string

	// Writer receives the script instead of a file.
	Writer io.Writer

	// OutputDir switches to one script per table, named NN_<table>.sql.
	// The directory is created if it doesn't exist.
	OutputDir string
}

// Generate loads the templates and writes the script in one call.
//
// Missing template files are skipped. A malformed template, an inaccessible
// templates directory or an unwritable destination returns an error, and no
// output file is changed.
func Generate(opts *Options, outOpts *OutputOptions) error {
	d, err := LoadDataset(opts)
	if err != nil {
		return err
	}
	return FormatDataset(d, opts, outOpts)
}

// LoadDataset reads the mapped templates into memory without writing anything.
func LoadDataset(opts *Options) (*seed.Dataset, error) {
	if opts == nil {
		opts = &Options{}
	}

	dir := opts.TemplatesDir
	if dir == "" {
		dir = DefaultTemplatesDir
	}

	mappings := opts.Tables
	if mappings == nil {
		mappings = DefaultTables()
	}
	mappings = filterTables(mappings, opts.Only, opts.ExcludeTables)

	d, err := reader.NewReader(dir).ReadDataset(mappings)
	if err != nil {
		return nil, err
	}

	slog.Debug("loaded templates", "dir", dir, "tables", len(d.Tables), "rows", d.RowCount())
	return d, nil
}

// FormatDataset renders d and writes it according to outOpts.
func FormatDataset(d *seed.Dataset, opts *Options, outOpts *OutputOptions) error {
	if opts == nil {
		opts = &Options{}
	}
	if outOpts == nil {
		outOpts = &OutputOptions{}
	}
	fopts := formatter.Options{QuoteIdentifiers: opts.QuoteIdentifiers}

	// Multi-file output
	if outOpts.OutputDir != "" {
		written, err := formatter.NewMultiFileFormatter(outOpts.OutputDir, fopts).Format(d)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		slog.Debug("wrote table scripts", "dir", outOpts.OutputDir, "files", len(written))
		return nil
	}

	writer := outOpts.Writer
	path := outOpts.Path
	if writer == nil && path == StdoutPath {
		writer = os.Stdout
	}

	if writer != nil {
		if err := formatter.NewSQLFormatter(writer, fopts).Format(d); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if path == "" {
		path = DefaultOutputPath
	}
	if err := formatter.WriteFileAtomic(path, []byte(formatter.Render(d, fopts)), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	slog.Debug("wrote seed script", "path", path, "statements", d.RowCount()+2)
	return nil
}

// filterTables applies the Only and ExcludeTables filters, keeping mapping order.
func filterTables(mappings []seed.Mapping, only, exclude []string) []seed.Mapping {
	if len(only) == 0 && len(exclude) == 0 {
		return mappings
	}

	onlySet := make(map[string]bool, len(only))
	for _, name := range only {
		onlySet[name] = true
	}
	excludeSet := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excludeSet[name] = true
	}

	filtered := make([]seed.Mapping, 0, len(mappings))
	for _, m := range mappings {
		if len(onlySet) > 0 && !onlySet[m.Table] {
			continue
		}
		if excludeSet[m.Table] {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
