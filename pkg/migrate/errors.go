package migrate

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnexpectedDbType is returned when a DbType value outside the closed
// enumeration reaches a type lookup. This indicates a defect in the calling
// code, not a mistake in the user's schema definition.
var ErrUnexpectedDbType = &MigrationError{msg: "unexpected db type"}

// ErrUnsupported is returned for changes a dialect fundamentally cannot
// express (e.g. column alters on SQLite).
var ErrUnsupported = errors.New("unsupported operation")

type (
	// MigrationError wraps any failure that aborts a migration run: connection
	// establishment, reading the live schema, ordering-protocol violations in
	// the statement buffer, or driver failures while applying changes. The
	// original cause is retained for diagnostics.
	MigrationError struct {
		msg   string
		cause error
	}

	// SchemaError reports a mistake in the declarative schema definition, such
	// as an unknown column type or a missing required length. These are raised
	// eagerly during snapshot derivation, before any DDL is emitted.
	SchemaError struct {
		msg   string
		cause error
	}
)

// NewMigrationError creates a MigrationError with the given message and an
// optional underlying cause.
func NewMigrationError(msg string, cause error) *MigrationError {
	return &MigrationError{msg: msg, cause: cause}
}

// MigrationErrorf creates a MigrationError from a format string.
func MigrationErrorf(format string, args ...any) *MigrationError {
	return &MigrationError{msg: fmt.Sprintf(format, args...)}
}

func (e *MigrationError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap returns the underlying cause, if any.
func (e *MigrationError) Unwrap() error { return e.cause }

// NewSchemaError creates a SchemaError with the given message and an optional
// underlying cause.
func NewSchemaError(msg string, cause error) *SchemaError {
	return &SchemaError{msg: msg, cause: cause}
}

// SchemaErrorf creates a SchemaError from a format string.
func SchemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap returns the underlying cause, if any.
func (e *SchemaError) Unwrap() error { return e.cause }
