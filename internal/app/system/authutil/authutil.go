// Package authutil holds the credential helpers shared by signup and
// login.
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default.
const bcryptCost = 12

// minPasswordLen is the shortest password signup accepts.
const minPasswordLen = 8

var (
	// ErrPasswordTooShort is returned for passwords under eight
	// characters.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrInvalidEmail is returned for strings that are not a plausible
	// email address.
	ErrInvalidEmail = errors.New("invalid email address")
)

// HashPassword hashes a password using bcrypt with a cost of 12.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidEmail does a shallow structural check: one @, a non-empty local
// part, and a dot inside the domain. Real validation happens when mail
// is actually sent.
func ValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
