package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
)

// SessionStore persists exam sessions and their transcripts.
type SessionStore interface {
	// Create saves a new session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session without its messages.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ListByUser returns a user's sessions, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error)

	// Update saves the mutable state of a session: turn, phase, focus,
	// status, score, feedback and timestamps.
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.Session) error

	// AppendMessage adds a message to a session transcript.
	AppendMessage(ctx context.Context, msg *domain.Message) error

	// Messages returns a session transcript ordered by sequence.
	Messages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error)

	// WithTx returns a new SessionStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) SessionStore
}
