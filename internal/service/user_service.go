package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/service/auth"
	"github.com/phrazzld/viva-api/internal/store"
)

// UserService registers and authenticates users.
type UserService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	db     *sql.DB
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

var _ UserService = (*userService)(nil)

// NewUserService creates the user service.
func NewUserService(db *sql.DB, users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) (UserService, error) {
	if db == nil || users == nil || hasher == nil {
		return nil, &ServiceError{Service: "user", Operation: "create_service", Message: "db, store and hasher are required"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		db:     db,
		users:  users,
		hasher: hasher,
		logger: logger.With("component", "user_service"),
	}, nil
}

// Register validates the credentials, hashes the password and stores the
// user. The plaintext password never leaves this method.
func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, newError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.DebugContext(ctx, "registration with existing email")
		} else {
			s.logger.ErrorContext(ctx, "failed to create user", "error", err)
		}
		return nil, newError("user", "register", "failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns the user for valid credentials and
// ErrInvalidCredentials otherwise, without revealing which part was wrong.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "failed to load user for login", "error", err)
		return nil, newError("user", "authenticate", "failed to load user", err)
	}
	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.logger.DebugContext(ctx, "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, newError("user", "get", "failed to load user", err)
	}
	return user, nil
}
