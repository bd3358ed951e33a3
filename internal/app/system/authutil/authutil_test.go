package authutil_test

import (
	"errors"
	"strings"
	"testing"

	"underwraps/internal/app/system/authutil"
)

func TestHashPassword(t *testing.T) {
	hash, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	// bcrypt hashes start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Error("expected bcrypt hash to start with $2")
	}
	if !authutil.CheckPassword(hash, "correct horse battery") {
		t.Error("hash does not verify against its own password")
	}
	if authutil.CheckPassword(hash, "wrong password") {
		t.Error("hash verified against the wrong password")
	}
}

func TestHashPassword_SaltVaries(t *testing.T) {
	// bcrypt uses random salt, so hashes should be different.
	a, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	b, err := authutil.HashPassword("correct horse battery")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashPassword_TooShort(t *testing.T) {
	if _, err := authutil.HashPassword("short"); !errors.Is(err, authutil.ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b@sub.example.org", "x@y.zz"}
	for _, e := range valid {
		if !authutil.ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false, want true", e)
		}
	}
	invalid := []string{"", "plain", "@example.com", "a@b@c.com", "user@nodot", "user@.com", "user@domain."}
	for _, e := range invalid {
		if authutil.ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true, want false", e)
		}
	}
}
