package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
)

// UserStore persists candidate accounts. Emails are stored lower-cased and are
// unique.
type UserStore interface {
	// Create inserts a user that already carries a HashedPassword. A taken
	// email yields ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID and GetByEmail yield ErrUserNotFound when there is no match.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	WithTx(tx *sql.Tx) UserStore
}
