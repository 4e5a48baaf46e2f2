package migrate

import (
	"context"
	"database/sql"
)

type (
	// Dialect is the set of database-specific capabilities the generator
	// delegates to. Each method is a pure function of its inputs; dialects
	// hold no mutable state across calls.
	Dialect interface {
		// Name returns the dialect identifier (e.g. "mysql")
		Name() string

		// StatementSeparator returns the statement terminator text (e.g. ";")
		StatementSeparator() string

		// EscapeComment renders text as a single-line SQL comment
		EscapeComment(comment string) string

		// UseStatement returns the dialect's select-database statement text
		UseStatement(database string) string

		// DefaultCollation returns the collation used for a character set when
		// the model doesn't pin one
		DefaultCollation(charset string) (string, error)

		// QuoteIdentifier quotes a table/column/index name
		QuoteIdentifier(name string) string

		// ColumnDefinition renders a column's DDL definition (name, type,
		// nullability, default) in dialect syntax
		ColumnDefinition(col *Column) (string, error)

		// NormalizeColumn rewrites a projected column in place into the shape
		// this dialect's schema reader would report for it, so that columns the
		// dialect stores differently from their canonical form (e.g. a guid as
		// a fixed-length string) don't produce spurious changes
		NormalizeColumn(col *Column)

		// WriteProlog queues any statements that must precede the script body
		// (e.g. disabling foreign key checks). Called once per run, before the
		// first change is translated.
		WriteProlog(buf *Buffer) error

		// WriteChange translates one structural change into statement buffer
		// commits
		WriteChange(buf *Buffer, change *Change) error

		// NewSchemaReader constructs the live-schema reader for this dialect
		NewSchemaReader(db *sql.DB, database string) SchemaReader
	}

	// SchemaReader reads the current structure of the execution target into a
	// normalized snapshot.
	SchemaReader interface {
		Read(ctx context.Context) (*Snapshot, error)
	}
)
