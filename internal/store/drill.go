package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
)

// DrillStore persists practice drills.
type DrillStore interface {
	// CreateMany saves new drills.
	CreateMany(ctx context.Context, drills []*domain.Drill) error

	// GetByID retrieves a drill.
	// Returns ErrDrillNotFound if the drill does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Drill, error)

	// ListByUser returns a user's drills ordered by due time. When dueOnly is
	// set only pending drills due at or before now are returned.
	ListByUser(ctx context.Context, userID uuid.UUID, dueOnly bool, now time.Time, limit int) ([]*domain.Drill, error)

	// CountBySession returns how many drills were derived from a session.
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error)

	// Update saves a drill's scheduling state and status.
	// Returns ErrDrillNotFound if the drill does not exist.
	Update(ctx context.Context, drill *domain.Drill) error

	// WithTx returns a new DrillStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DrillStore
}
