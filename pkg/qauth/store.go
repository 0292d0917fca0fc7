// Package qauth verifies HTTP Basic credentials against a credential store.
package qauth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnknownUser is returned by a Store that has no such account.
	ErrUnknownUser = errors.New("qauth: unknown user")
	// ErrInvalidCredentials is returned for any failed verification. It
	// does not tell an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("qauth: invalid credentials")
)

// Account is a stored credential.
type Account struct {
	Username     string
	PasswordHash string
	Disabled     bool
}

// Store looks up accounts by username.
type Store interface {
	Lookup(ctx context.Context, username string) (*Account, error)
}

// HashPassword returns a bcrypt hash suitable for AUTH_USERS or the users
// table.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
