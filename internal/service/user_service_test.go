package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

func newUserFixture(t *testing.T) (UserService, *mocks.UserStore, *mocks.PasswordHasher) {
	t.Helper()
	db, mock := txDB(t)
	expectTxs(mock, 5)
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
	users := mocks.NewUserStore()
	hasher := &mocks.PasswordHasher{}
	svc, err := NewUserService(db, users, hasher, quietLogger())
	require.NoError(t, err)
	return svc, users, hasher
}

func TestUserService_Register(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Resident@Example.com ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "resident@example.com", user.Email)
	assert.Empty(t, user.Password)
	assert.Equal(t, "hashed:"+testPassword, user.HashedPassword)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, stored.Email)

	_, err = svc.Register(ctx, "resident@example.com", testPassword)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _, hasher := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "not-an-email", testPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, "a@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	hasher.HashErr = errors.New("hash failed")
	_, err = svc.Register(ctx, "a@example.com", testPassword)
	var svcErr *ServiceError
	assert.True(t, errors.As(err, &svcErr))
}

func TestUserService_Authenticate(t *testing.T) {
	svc, _, hasher := newUserFixture(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "resident@example.com", testPassword)
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "resident@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(ctx, "resident@example.com", "wrong-password-123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 2, hasher.CompareCallCount)
}

func TestUserService_GetUser(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, "resident@example.com", testPassword)
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.Email, got.Email)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewUserService_RequiresDependencies(t *testing.T) {
	_, err := NewUserService(nil, mocks.NewUserStore(), &mocks.PasswordHasher{}, nil)
	assert.Error(t, err)
}
