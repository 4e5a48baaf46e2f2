package migrate

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	// KindComment marks an explanatory line that is never executed
	KindComment StatementKind = "comment"
	// KindStatement marks an executable SQL statement
	KindStatement StatementKind = "statement"
	// KindSeparator marks the text between statements (terminators, blank lines)
	KindSeparator StatementKind = "separator"
)

type (
	// StatementKind tags a script fragment as a comment, an executable
	// statement, or a separator.
	StatementKind string

	// Statement is one immutable fragment of the generated migration script.
	// The order of fragments in the buffer is the literal script order.
	Statement struct {
		Kind StatementKind
		Text string
	}
)

// WriteScript serializes the fragment sequence to w in script order.
func WriteScript(w io.Writer, statements []Statement) error {
	for _, stmt := range statements {
		if _, err := io.WriteString(w, stmt.Text); err != nil {
			return errors.Wrap(err, "failed to write migration script")
		}
	}
	return nil
}

// Script serializes the fragment sequence to a string.
func Script(statements []Statement) string {
	var sb strings.Builder
	for _, stmt := range statements {
		sb.WriteString(stmt.Text)
	}
	return sb.String()
}

// ExecutableStatements filters the fragment sequence down to the statement
// texts, in order, for callers that execute the script instead of printing
// it.
func ExecutableStatements(statements []Statement) []string {
	var out []string
	for _, stmt := range statements {
		if stmt.Kind == KindStatement {
			out = append(out, stmt.Text)
		}
	}
	return out
}
