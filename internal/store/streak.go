package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
)

// StreakStore persists practice streaks.
type StreakStore interface {
	// Get returns the user's streak, or a zero streak if none was recorded.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error)

	// Upsert saves the streak.
	Upsert(ctx context.Context, streak *domain.Streak) error

	// WithTx returns a new StreakStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StreakStore
}

// SettingsStore persists user settings.
type SettingsStore interface {
	// Get returns the user's settings, or the defaults if none were saved.
	Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)

	// Upsert validates and saves the settings.
	Upsert(ctx context.Context, settings *domain.Settings) error
}
