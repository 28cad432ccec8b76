//go:build integration
// +build integration

package integration

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/tordrt/seedgen"
	"github.com/tordrt/seedgen/internal/seed"
)

// peopleCSV exercises quotes, NULLs and embedded newlines
const peopleCSV = "id,name\n1,O'Brien\n2,\n3,\"multi\nline\"\n"

// personRow is one row read back from the database
type personRow struct {
	ID   string
	Name sql.NullString
}

// wantPeople is what a database should hold after running the script
var wantPeople = []personRow{
	{ID: "1", Name: sql.NullString{String: "O'Brien", Valid: true}},
	{ID: "2"},
	{ID: "3", Name: sql.NullString{String: "multi\nline", Valid: true}},
}

// generateScript writes the people template and compiles it for table
func generateScript(t *testing.T, table string, quote bool) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "people.csv"), []byte(peopleCSV), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	var buf bytes.Buffer
	err := seedgen.Generate(
		&seedgen.Options{
			TemplatesDir:     dir,
			Tables:           []seed.Mapping{{File: "people.csv", Table: table}},
			QuoteIdentifiers: quote,
		},
		&seedgen.OutputOptions{Writer: &buf},
	)
	if err != nil {
		t.Fatalf("Failed to generate script: %v", err)
	}
	return buf.String()
}

// scanPeople reads id/name rows from a database/sql result set
func scanPeople(t *testing.T, rows *sql.Rows) []personRow {
	t.Helper()
	defer rows.Close()

	var got []personRow
	for rows.Next() {
		var r personRow
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			t.Fatalf("Failed to scan row: %v", err)
		}
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Row iteration failed: %v", err)
	}
	return got
}

// verifyPeople checks the rows read back against wantPeople
func verifyPeople(t *testing.T, got []personRow) {
	t.Helper()

	if len(got) != len(wantPeople) {
		t.Fatalf("Expected %d rows, got %d", len(wantPeople), len(got))
	}

	for i, want := range wantPeople {
		if got[i] != want {
			t.Errorf("Row %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}
