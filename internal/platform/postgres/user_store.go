package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// PostgresUserStore implements store.UserStore.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a user store. A nil logger uses slog.Default.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx returns a copy of the store bound to tx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create inserts a user. Emails are unique case-insensitively because they
// are stored lowercased.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: user has no password hash", store.ErrInvalidEntity)
	}
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		user.ID, strings.ToLower(user.Email), user.HashedPassword, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		s.logger.ErrorContext(ctx, "failed to create user", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return wrap("create", "user", err)
	}
	return nil
}

// GetByID returns a user by ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users WHERE id = $1`, id)
}

// GetByEmail returns a user by email address.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, wrap("get", "user", err)
	}
	return &u, nil
}
