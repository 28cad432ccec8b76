package formatter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tordrt/seedgen/internal/seed"
)

const filePerm = 0644

// tableFilePattern matches names produced by TableFileName
var tableFilePattern = regexp.MustCompile(`^[0-9]{2,}_.+\.sql$`)

// MultiFileFormatter writes one complete script per table into a directory
type MultiFileFormatter struct {
	OutputDir string
	Options   Options
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir string, opts Options) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir: outputDir,
		Options:   opts,
	}
}

// Format writes NN_<table>.sql for each table and returns the paths written.
//
// Every script is rendered into a staging directory first, so a failure
// while writing leaves the output directory as it was. Table scripts from
// earlier runs that this run did not produce are removed.
func (f *MultiFileFormatter) Format(d *seed.Dataset) ([]string, error) {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	staging, err := os.MkdirTemp(f.OutputDir, ".seedgen-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	names := make([]string, 0, len(d.Tables))
	for i, table := range d.Tables {
		position := table.Position
		if position == 0 {
			position = i + 1
		}
		name := TableFileName(position, table.Name)
		single := &seed.Dataset{Tables: []seed.Table{table}}

		if err := os.WriteFile(filepath.Join(staging, name), []byte(Render(single, f.Options)), filePerm); err != nil {
			return nil, fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
		names = append(names, name)
	}

	written := make([]string, 0, len(names))
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		path := filepath.Join(f.OutputDir, name)
		if err := os.Rename(filepath.Join(staging, name), path); err != nil {
			return written, fmt.Errorf("failed to replace %s: %w", path, err)
		}
		written = append(written, path)
		keep[name] = true
	}

	if err := f.removeStale(keep); err != nil {
		return written, err
	}

	return written, nil
}

// removeStale deletes table scripts in the output directory not listed in keep
func (f *MultiFileFormatter) removeStale(keep map[string]bool) error {
	entries, err := os.ReadDir(f.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to list output directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || keep[name] || !tableFilePattern.MatchString(name) {
			continue
		}
		path := filepath.Join(f.OutputDir, name)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale script %s: %w", path, err)
		}
		slog.Debug("removed stale table script", "file", path)
	}

	return nil
}

// TableFileName returns the file name for the table at the 1-based mapping
// position. The two-digit prefix keeps a lexical listing in dependency order.
func TableFileName(position int, table string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, table)
	return fmt.Sprintf("%02d_%s.sql", position, safe)
}
