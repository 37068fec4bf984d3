// Package auth owns credentials (bcrypt password hashes), the access
// guard that decides whether a caller may touch a user or task, and
// cookie-backed login sessions.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskcur/taskcur/internal/model"
)

// MinPasswordLength is the shortest password accepted anywhere a
// password is set.
const MinPasswordLength = 8

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidateNewPassword applies the acceptance policy to a new password
// and its confirmation.
func ValidateNewPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// HashPassword derives a bcrypt hash from the plaintext. bcrypt embeds
// a fresh random salt, so hashing the same password twice never yields
// the same credential.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored
// hash. Comparison is delegated to bcrypt; hash bytes are never
// compared directly.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsSetup reports whether the user predates password
// authentication and must set a password before logging in.
func NeedsSetup(u model.User) bool {
	return u.PasswordHash == ""
}
