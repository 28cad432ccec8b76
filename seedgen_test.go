package seedgen

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/seedgen/internal/seed"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestGenerateExample(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "t.csv", "id,name\n1,O'Brien\n2,\n")
	out := filepath.Join(dir, "seed.sql")

	err := Generate(
		&Options{TemplatesDir: dir, Tables: []seed.Mapping{{File: "t.csv", Table: "public.t"}}},
		&OutputOptions{Path: out},
	)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "BEGIN;\n" +
		"INSERT INTO public.t (id, name) VALUES ('1', 'O''Brien');\n" +
		"INSERT INTO public.t (id, name) VALUES ('2', NULL);\n" +
		"COMMIT;\n"
	if got := readFile(t, out); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateOnlyExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "b.csv", "id\n1\n2\n")

	var buf bytes.Buffer
	err := Generate(
		&Options{TemplatesDir: dir, Tables: []seed.Mapping{{File: "a.csv", Table: "A"}, {File: "b.csv", Table: "B"}}},
		&OutputOptions{Writer: &buf},
	)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if lines[0] != "BEGIN;" || lines[len(lines)-1] != "COMMIT;" {
		t.Fatalf("script not wrapped in BEGIN/COMMIT: %q", lines)
	}
	if strings.Count(buf.String(), "BEGIN;") != 1 || strings.Count(buf.String(), "COMMIT;") != 1 {
		t.Errorf("expected exactly one BEGIN and one COMMIT")
	}
	for _, line := range lines[1 : len(lines)-1] {
		if !strings.HasPrefix(line, "INSERT INTO B ") {
			t.Errorf("unexpected statement %q", line)
		}
	}
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4", len(lines))
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id,label\n1,x\n2,it's\n")
	writeTemplate(t, dir, "b.csv", "id,a_id\n10,1\n")
	out := filepath.Join(dir, "seed.sql")

	opts := &Options{
		TemplatesDir: dir,
		Tables:       []seed.Mapping{{File: "a.csv", Table: "a"}, {File: "b.csv", Table: "b"}},
	}

	if err := Generate(opts, &OutputOptions{Path: out}); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	first := readFile(t, out)

	if err := Generate(opts, &OutputOptions{Path: out}); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}
	if second := readFile(t, out); second != first {
		t.Errorf("output changed between runs:\n%s\n---\n%s", first, second)
	}
}

func TestGenerateReorderedMapping(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id\na\n")
	writeTemplate(t, dir, "b.csv", "id\nb\n")

	render := func(mappings []seed.Mapping) string {
		var buf bytes.Buffer
		if err := Generate(&Options{TemplatesDir: dir, Tables: mappings}, &OutputOptions{Writer: &buf}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		return buf.String()
	}

	ab := render([]seed.Mapping{{File: "a.csv", Table: "A"}, {File: "b.csv", Table: "B"}})
	ba := render([]seed.Mapping{{File: "b.csv", Table: "B"}, {File: "a.csv", Table: "A"}})

	wantAB := "BEGIN;\nINSERT INTO A (id) VALUES ('a');\nINSERT INTO B (id) VALUES ('b');\nCOMMIT;\n"
	wantBA := "BEGIN;\nINSERT INTO B (id) VALUES ('b');\nINSERT INTO A (id) VALUES ('a');\nCOMMIT;\n"
	if ab != wantAB {
		t.Errorf("a,b order =\n%s\nwant\n%s", ab, wantAB)
	}
	if ba != wantBA {
		t.Errorf("b,a order =\n%s\nwant\n%s", ba, wantBA)
	}
}

func TestGenerateMalformedKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id,name\n1\n")
	out := filepath.Join(dir, "seed.sql")
	if err := os.WriteFile(out, []byte("previous\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Generate(
		&Options{TemplatesDir: dir, Tables: []seed.Mapping{{File: "a.csv", Table: "a"}}},
		&OutputOptions{Path: out},
	)
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Fatalf("Generate() error = %v, want csv.ErrFieldCount", err)
	}
	if got := readFile(t, out); got != "previous\n" {
		t.Errorf("output was modified on failure: %q", got)
	}
}

func TestGenerateUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id\n1\n")

	err := Generate(
		&Options{TemplatesDir: dir, Tables: []seed.Mapping{{File: "a.csv", Table: "a"}}},
		&OutputOptions{Path: filepath.Join(dir, "missing", "seed.sql")},
	)
	if err == nil {
		t.Error("expected error for unwritable output path")
	}
}

func TestGenerateDefaults(t *testing.T) {
	root := t.TempDir()
	templates := filepath.Join(root, "docs", "templates")
	if err := os.MkdirAll(templates, 0755); err != nil {
		t.Fatal(err)
	}
	writeTemplate(t, templates, "profiles.csv", "id,full_name\np1,Ann\n")
	writeTemplate(t, templates, "auth_users.csv", "id,email\nu1,ann@example.com\n")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if err := Generate(nil, nil); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := "BEGIN;\n" +
		"INSERT INTO auth.users (id, email) VALUES ('u1', 'ann@example.com');\n" +
		"INSERT INTO public.profiles (id, full_name) VALUES ('p1', 'Ann');\n" +
		"COMMIT;\n"
	if got := readFile(t, DefaultOutputPath); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateOutputDir(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id\n1\n")
	writeTemplate(t, dir, "b.csv", "id\n2\n")
	outDir := filepath.Join(dir, "split")

	err := Generate(
		&Options{TemplatesDir: dir, Tables: []seed.Mapping{{File: "a.csv", Table: "a"}, {File: "b.csv", Table: "b"}}},
		&OutputOptions{OutputDir: outDir},
	)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got := readFile(t, filepath.Join(outDir, "02_b.sql")); got != "BEGIN;\nINSERT INTO b (id) VALUES ('2');\nCOMMIT;\n" {
		t.Errorf("02_b.sql = %q", got)
	}
}

func TestGenerateOutputDirAfterTemplateRemoved(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.csv", "id\n1\n")
	writeTemplate(t, dir, "b.csv", "id\n2\n")
	writeTemplate(t, dir, "c.csv", "id\n3\n")
	outDir := filepath.Join(dir, "split")

	opts := &Options{
		TemplatesDir: dir,
		Tables:       []seed.Mapping{{File: "a.csv", Table: "a"}, {File: "b.csv", Table: "b"}, {File: "c.csv", Table: "c"}},
	}

	if err := Generate(opts, &OutputOptions{OutputDir: outDir}); err != nil {
		t.Fatalf("first Generate() error = %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "b.csv")); err != nil {
		t.Fatal(err)
	}
	if err := Generate(opts, &OutputOptions{OutputDir: outDir}); err != nil {
		t.Fatalf("second Generate() error = %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}

	want := []string{"01_a.sql", "03_c.sql"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("files after second run = %v, want %v", got, want)
	}
	if c := readFile(t, filepath.Join(outDir, "03_c.sql")); c != "BEGIN;\nINSERT INTO c (id) VALUES ('3');\nCOMMIT;\n" {
		t.Errorf("03_c.sql = %q", c)
	}
}

func TestFilterTables(t *testing.T) {
	mappings := []seed.Mapping{
		{File: "users.csv", Table: "users"},
		{File: "posts.csv", Table: "posts"},
		{File: "comments.csv", Table: "comments"},
	}

	tests := []struct {
		name       string
		only       []string
		exclude    []string
		wantTables []string
	}{
		{
			name:       "no filters",
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "exclude single table",
			exclude:    []string{"posts"},
			wantTables: []string{"users", "comments"},
		},
		{
			name:       "only keeps mapping order",
			only:       []string{"comments", "users"},
			wantTables: []string{"users", "comments"},
		},
		{
			name:       "only and exclude",
			only:       []string{"users", "posts"},
			exclude:    []string{"users"},
			wantTables: []string{"posts"},
		},
		{
			name:       "exclude non-existent table",
			exclude:    []string{"products"},
			wantTables: []string{"users", "posts", "comments"},
		},
		{
			name:       "exclude all tables",
			exclude:    []string{"users", "posts", "comments"},
			wantTables: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterTables(mappings, tt.only, tt.exclude)

			if len(got) != len(tt.wantTables) {
				t.Fatalf("filterTables() returned %d tables, want %d", len(got), len(tt.wantTables))
			}
			for i, m := range got {
				if m.Table != tt.wantTables[i] {
					t.Errorf("filterTables() table[%d] = %s, want %s", i, m.Table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestDefaultTables(t *testing.T) {
	want := []string{"auth.users", "public.profiles", "public.account_manager_cities", "public.requests", "public.request_assignments"}

	got := DefaultTables()
	if len(got) != len(want) {
		t.Fatalf("DefaultTables() has %d entries, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Table != want[i] {
			t.Errorf("DefaultTables()[%d] = %s, want %s", i, m.Table, want[i])
		}
	}
}
