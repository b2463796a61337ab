package mocks

import (
	"errors"

	"github.com/phrazzld/viva-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by PasswordHasher.Compare on a mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher is a reversible auth.PasswordHasher for fast tests.
type PasswordHasher struct {
	HashErr error
	// CompareCallCount tracks how many times Compare was called.
	CompareCallCount int
}

var _ auth.PasswordHasher = (*PasswordHasher)(nil)

// Hash implements auth.PasswordHasher.
func (m *PasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

// Compare implements auth.PasswordHasher.
func (m *PasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCallCount++
	if hashedPassword != "hashed:"+password {
		return ErrPasswordMismatch
	}
	return nil
}
