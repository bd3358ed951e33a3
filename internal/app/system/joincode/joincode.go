// Package joincode generates the short codes participants type to join a
// group. Codes are fixed-length lowercase alphanumerics ("x7f2q" style).
//
// Generation alone does not make a code unique: the caller must reserve it
// by inserting the group document against the unique groups.code index and
// regenerate on a duplicate-key error. Checking first and inserting later
// would race with concurrent creates.
package joincode

import (
	"crypto/rand"
)

const (
	// Length is the fixed code length.
	Length = 5

	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// SpaceSize is the number of distinct codes (36^Length). With a bounded
// retry count the generator gives up long before this matters; the constant
// exists so callers can reason about exhaustion.
const SpaceSize = 36 * 36 * 36 * 36 * 36

// New returns a random candidate code.
func New() string {
	b := make([]byte, Length)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}

// Valid reports whether s has the right length and draws only from the
// code alphabet. Input should be normalized (lowercased) first.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
