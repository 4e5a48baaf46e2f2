package migrate

import "strings"

// Buffer accumulates the fragments of a migration script for a single
// generator run. It maintains two regions: prolog statements that must run
// before any substantive statement, and the body. A scratch accumulator lets
// callers compose a statement across multiple calls before committing it as
// one fragment.
//
// The buffer guarantees that every committed statement fragment is followed
// by exactly one separator fragment, and that pending prolog statements are
// flushed, in insertion order, immediately before the first body statement
// that follows them.
type Buffer struct {
	separator  string
	statements []Statement
	prolog     []string
	scratch    strings.Builder
}

// NewBuffer creates a Buffer that terminates statements with the given
// dialect separator (e.g. ";").
func NewBuffer(separator string) *Buffer {
	return &Buffer{separator: separator}
}

// Comment appends a comment fragment. The text is expected to already be
// escaped for the target dialect.
func (b *Buffer) Comment(text string) {
	b.statements = append(b.statements, Statement{Kind: KindComment, Text: text + "\n"})
}

// BlankLine appends an empty separator fragment, producing a blank line in
// the serialized script. Blank lines never trigger a prolog flush.
func (b *Buffer) BlankLine() {
	b.statements = append(b.statements, Statement{Kind: KindSeparator, Text: "\n"})
}

// Prolog queues a statement that must run before all substantive statements.
// Once any body statement has been committed, adding a prolog statement is a
// protocol violation and fails with a MigrationError.
func (b *Buffer) Prolog(text string) error {
	for _, stmt := range b.statements {
		if stmt.Kind == KindStatement {
			return NewMigrationError("prolog must precede statements", nil)
		}
	}

	b.prolog = append(b.prolog, text)
	return nil
}

// Append adds a line to the scratch accumulator without committing it. Use
// this to compose a multi-line statement, then seal it with Add.
func (b *Buffer) Append(text string) {
	b.scratch.WriteString(text)
	b.scratch.WriteString("\n")
}

// Add commits the scratch accumulator plus the given text as a single
// statement fragment, followed by one separator fragment. Pending prolog
// statements are flushed first, each as its own statement with its own
// separator. The scratch accumulator is cleared.
func (b *Buffer) Add(text string) {
	for _, prolog := range b.prolog {
		b.statements = append(b.statements,
			Statement{Kind: KindStatement, Text: prolog},
			Statement{Kind: KindSeparator, Text: b.separator + "\n"})
	}
	b.prolog = b.prolog[:0]

	b.scratch.WriteString(text)
	b.statements = append(b.statements,
		Statement{Kind: KindStatement, Text: b.scratch.String()},
		Statement{Kind: KindSeparator, Text: b.separator + "\n"})
	b.scratch.Reset()
}

// Statements returns the accumulated fragment sequence in emission order.
func (b *Buffer) Statements() []Statement {
	out := make([]Statement, len(b.statements))
	copy(out, b.statements)
	return out
}
