package formatter

import (
	"io"
	"strings"

	"github.com/tordrt/seedgen/internal/seed"
)

const (
	beginStatement  = "BEGIN;"
	commitStatement = "COMMIT;"
)

// Options controls how statements are rendered
type Options struct {
	// QuoteIdentifiers emits table and column names as quoted identifiers
	QuoteIdentifiers bool
}

// SQLFormatter writes a dataset as a single transactional insert script
type SQLFormatter struct {
	writer io.Writer
	opts   Options
}

// NewSQLFormatter creates a new SQL script formatter
func NewSQLFormatter(w io.Writer, opts Options) *SQLFormatter {
	return &SQLFormatter{writer: w, opts: opts}
}

// Format writes the script for the dataset in a single write
func (f *SQLFormatter) Format(d *seed.Dataset) error {
	_, err := io.WriteString(f.writer, Render(d, f.opts))
	return err
}

// Render returns the full script: BEGIN, every insert in dataset order,
// COMMIT, one statement per line with a trailing newline.
func Render(d *seed.Dataset, opts Options) string {
	statements := Statements(d, opts)
	return strings.Join(statements, "\n") + "\n"
}

// Statements returns the ordered statements of the script
func Statements(d *seed.Dataset, opts Options) []string {
	statements := make([]string, 0, d.RowCount()+2)
	statements = append(statements, beginStatement)
	for i := range d.Tables {
		table := &d.Tables[i]
		for _, row := range table.Rows {
			statements = append(statements, InsertStatement(table, row, opts))
		}
	}
	return append(statements, commitStatement)
}

// InsertStatement builds the INSERT for one row of table
func InsertStatement(table *seed.Table, row seed.Row, opts Options) string {
	columns := make([]string, len(table.Columns))
	values := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = ColumnIdentifier(col, opts.QuoteIdentifiers)
		v, _ := row.Value(i)
		values[i] = Literal(v)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(TableIdentifier(table.Name, opts.QuoteIdentifiers))
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(values, ", "))
	b.WriteString(");")
	return b.String()
}
