// Package reader loads CSV seed templates into a seed.Dataset.
//
// Each template is a header-delimited, UTF-8 CSV file. The first record names
// the columns and every later record becomes a row, in file order. Templates
// that do not exist are skipped; any other failure aborts the load.
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/tordrt/seedgen/internal/seed"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned when a template is not valid UTF-8
var ErrInvalidEncoding = errors.New("template is not valid UTF-8")

// Reader reads templates from a base directory
type Reader struct {
	dir string
}

// NewReader creates a reader rooted at dir
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// ReadDataset loads every mapped template in mapping order.
// The base directory itself must be accessible.
func (r *Reader) ReadDataset(mappings []seed.Mapping) (*seed.Dataset, error) {
	info, err := os.Stat(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", r.dir)
	}

	dataset := &seed.Dataset{}
	for i, m := range mappings {
		if !seed.ValidTableName(m.Table) {
			return nil, fmt.Errorf("invalid table name %q for template %s", m.Table, m.File)
		}

		table, err := r.ReadTable(m)
		if err != nil {
			return nil, err
		}
		if table == nil {
			continue
		}
		table.Position = i + 1
		dataset.Tables = append(dataset.Tables, *table)
	}

	return dataset, nil
}

// ReadTable loads a single template. It returns a nil table and no error
// when the file does not exist.
func (r *Reader) ReadTable(m seed.Mapping) (*seed.Table, error) {
	path := filepath.Join(r.dir, m.File)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("skipping missing template", "file", path, "table", m.Table)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	table, err := Parse(m.Table, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	table.Source = path

	slog.Debug("loaded template", "file", path, "table", m.Table, "columns", len(table.Columns), "rows", len(table.Rows))
	return table, nil
}

// Parse decodes CSV data into a table named name.
func Parse(name string, data []byte) (*seed.Table, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	// Strip a leading byte order mark so it does not end up in the first column name
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(decoded))
	cr.LazyQuotes = true

	table := &seed.Table{Name: name}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return nil, err
	}
	table.Columns = header

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, seed.Row{Values: record})
	}

	return table, nil
}
