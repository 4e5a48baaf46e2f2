package schema

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

var (
	// schemaLexer defines the lexer for the declarative schema DSL
	schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `--[^\r\n]*`},
		{Name: "String", Pattern: `'([^'\\]|\\.)*'`},
		{Name: "Number", Pattern: `\d+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[(){},]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	// parser is the participle parser instance for the schema DSL
	parser = participle.MustBuild[Schema](
		participle.Lexer(schemaLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
)

// Parse reads a declarative schema definition from r and returns the parsed
// model. String values (charsets, defaults) are unquoted in place.
//
// Example:
//
//	f, _ := os.Open("db/schema.gmt")
//	model, err := schema.Parse(f)
func Parse(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read schema definition")
	}

	return ParseString(string(data))
}

// ParseString parses a declarative schema definition from a string.
func ParseString(input string) (*Schema, error) {
	model, err := parser.ParseString("", input)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse schema definition")
	}

	normalize(model)
	return model, nil
}

// ParseFile loads a declarative schema definition from the given path.
func ParseFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open schema file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// normalize strips quotes from all captured string literals so that the rest
// of the system never sees DSL quoting.
func normalize(s *Schema) {
	s.Charset = unquotePtr(s.Charset)

	for _, t := range s.Tables {
		for _, e := range t.Elements {
			if e.Column == nil {
				continue
			}
			for _, o := range e.Column.Options {
				o.Default = unquotePtr(o.Default)
				o.Charset = unquotePtr(o.Charset)
				for i, v := range o.Values {
					o.Values[i] = unquote(v)
				}
			}
		}
	}
}

func unquotePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := unquote(*s)
	return &v
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, `\'`, `'`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
