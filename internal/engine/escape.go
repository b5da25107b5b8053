package engine

import "regexp"

// EscapeLiteral returns s with every regexp metacharacter
// (. * + ? ^ $ { } ( ) | [ ] \) prefixed by a backslash so the result
// matches s literally. Escaping an already escaped string escapes it again.
func EscapeLiteral(s string) string {
	return regexp.QuoteMeta(s)
}
