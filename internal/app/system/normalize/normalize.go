// Package normalize canonicalizes user-supplied identifiers before they
// are stored or used in queries.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are stored and
// matched in this canonical form (the users.email unique index assumes it).
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Code canonicalizes a join code: trimmed and lowercased. Codes are stored
// lowercased, so joining is case-insensitive.
func Code(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
