// Package utils provides the fluent DDL builder and identifier helpers
// shared by the dialect packages.
package utils

import "strings"

// SQLBuilder provides a fluent interface for building DDL statements. It is
// parameterized over an identifier quoting function so every dialect shares
// the same clause building while keeping its own quoting rules.
//
// Example:
//
//	sql := utils.NewSQLBuilder(quote).
//		Alter("TABLE").
//		Name("users").
//		Raw("ADD COLUMN").
//		Raw(colDef).
//		String()
type SQLBuilder struct {
	quote func(string) string
	parts []string
}

// NewSQLBuilder creates a SQLBuilder using the given identifier quoting
// function.
func NewSQLBuilder(quote func(string) string) *SQLBuilder {
	return &SQLBuilder{
		quote: quote,
		parts: make([]string, 0, 10),
	}
}

// Create adds a CREATE clause for the given object type.
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// Drop adds a DROP clause for the given object type.
func (b *SQLBuilder) Drop(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "DROP", objectType)
	return b
}

// Alter adds an ALTER clause for the given object type.
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ALTER", objectType)
	return b
}

// Add adds an ADD clause for the given object type.
func (b *SQLBuilder) Add(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ADD", objectType)
	return b
}

// Name adds a quoted object name.
func (b *SQLBuilder) Name(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, b.quote(name))
	}
	return b
}

// Columns adds a parenthesized, quoted, comma-separated column list.
func (b *SQLBuilder) Columns(names ...string) *SQLBuilder {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = b.quote(name)
	}
	b.parts = append(b.parts, "("+strings.Join(quoted, ", ")+")")
	return b
}

// On adds an ON clause with a quoted name.
func (b *SQLBuilder) On(name string) *SQLBuilder {
	b.parts = append(b.parts, "ON", b.quote(name))
	return b
}

// References adds a REFERENCES clause with a quoted table and column list.
func (b *SQLBuilder) References(table string, columns ...string) *SQLBuilder {
	b.parts = append(b.parts, "REFERENCES", b.quote(table))
	return b.Columns(columns...)
}

// Raw adds raw SQL text. Use sparingly for constructs that don't fit the
// fluent pattern.
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// String builds the final statement text. No terminator is appended; the
// statement buffer owns separators.
func (b *SQLBuilder) String() string {
	return strings.Join(b.parts, " ")
}
