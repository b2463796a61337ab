package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

const (
	minPasswordLength = 12
	// bcrypt ignores bytes past 72.
	maxPasswordLength = 72
)

// User is a registered candidate.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and plaintext password.
// The caller hashes the password before storage.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		switch n := len(u.Password); {
		case n < minPasswordLength:
			return ErrPasswordTooShort
		case n > maxPasswordLength:
			return ErrPasswordTooLong
		}
		return nil
	}

	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
