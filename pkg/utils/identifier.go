package utils

import "strings"

// QuoteIdentifier wraps name in the given quote character, doubling any
// embedded quote characters. Both MySQL backticks and ANSI double quotes use
// the doubling rule.
func QuoteIdentifier(name string, quote rune) string {
	q := string(quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// EscapeSQLString renders value as a single-quoted SQL string literal.
func EscapeSQLString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
