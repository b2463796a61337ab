package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("  Test@Example.com ", "correcthorsebattery")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, "correcthorsebattery", user.Password)
	assert.False(t, user.CreatedAt.IsZero())
	assert.False(t, user.UpdatedAt.IsZero())

	_, err = NewUser("", "correcthorsebattery")
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = NewUser("invalidemail", "correcthorsebattery")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewUser("test@example.com", "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = NewUser("test@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = NewUser("test@example.com", strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestUserValidate(t *testing.T) {
	valid := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: "$2a$10$hash",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*User)
		want   error
	}{
		{"nil id", func(u *User) { u.ID = uuid.Nil }, ErrEmptyUserID},
		{"empty email", func(u *User) { u.Email = "" }, ErrEmptyEmail},
		{"bad email", func(u *User) { u.Email = "invalidemail" }, ErrInvalidEmail},
		{"no password at all", func(u *User) { u.HashedPassword = "" }, ErrEmptyPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := valid
			tc.mutate(&u)
			assert.ErrorIs(t, u.Validate(), tc.want)
		})
	}
}

func TestValidEmail(t *testing.T) {
	for _, email := range []string{
		"user@example.com",
		"user.name@example.com",
		"user+tag@example.com",
		"user@sub.example.com",
	} {
		assert.True(t, validEmail(email), email)
	}

	for _, email := range []string{
		"",
		"userexample.com",
		"user@",
		"@example.com",
		"user@.com",
		"user@example",
		"Name <user@example.com>",
	} {
		assert.False(t, validEmail(email), email)
	}
}
