package seed

import "strings"

// Mapping associates a CSV template file with the table it populates
type Mapping struct {
	File  string
	Table string
}

// Dataset holds the loaded tables in mapping order
type Dataset struct {
	Tables []Table
}

// Table represents one loaded CSV template
type Table struct {
	Name    string
	Source  string
	Columns []string
	Rows    []Row

	// Position is the 1-based index of the table's mapping. Skipped
	// templates keep their slot, so positions may have gaps.
	Position int
}

// ValidTableName reports whether name has at least one non-empty dotted part
func ValidTableName(name string) bool {
	for _, part := range strings.Split(name, ".") {
		if strings.TrimSpace(part) != "" {
			return true
		}
	}
	return false
}

// Row represents one CSV record. Values are aligned with Table.Columns.
type Row struct {
	Values []string
}

// Value returns the value at position i. A position past the end of the
// row is absent and reported with ok == false.
func (r Row) Value(i int) (value string, ok bool) {
	if i < 0 || i >= len(r.Values) {
		return "", false
	}
	return r.Values[i], true
}

// Get returns the value for the named column of t.
func (t *Table) Get(r Row, column string) (string, bool) {
	for i, c := range t.Columns {
		if c == column {
			return r.Value(i)
		}
	}
	return "", false
}

// RowCount returns the number of rows across all tables
func (d *Dataset) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += len(t.Rows)
	}
	return n
}
