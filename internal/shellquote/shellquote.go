// Package shellquote quotes item names for the example commands printed in
// hints.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteIfNeeded quotes strings that a shell would split or expand. Item names
// may contain spaces, so whitespace counts too.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t#[]()|!\"'$&;<>*?`~{}") {
		return Quote(s)
	}
	return s
}
