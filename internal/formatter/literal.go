package formatter

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// Null is emitted for empty or absent values
const Null = "NULL"

// Literal converts a raw CSV value to a SQL string literal.
// Empty values become NULL; otherwise single quotes are doubled and the
// result is wrapped in single quotes.
func Literal(value string) string {
	if value == "" {
		return Null
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// TableIdentifier renders a table name, optionally as a quoted
// PostgreSQL identifier. "schema.table" becomes "schema"."table".
func TableIdentifier(name string, quote bool) string {
	if !quote {
		return name
	}
	return splitQualified(name).Sanitize()
}

// ColumnIdentifier renders a column name, optionally quoted.
// Column names are never split on dots.
func ColumnIdentifier(name string, quote bool) string {
	if !quote {
		return name
	}
	return pgx.Identifier{name}.Sanitize()
}

// splitQualified converts "schema.table" into {"schema", "table"}.
// Empty parts are dropped.
func splitQualified(name string) pgx.Identifier {
	parts := strings.Split(name, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
