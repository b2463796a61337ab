package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// PostgresStreakStore implements store.StreakStore.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a streak store. A nil logger uses slog.Default.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx returns a copy of the store bound to tx.
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) store.StreakStore {
	return &PostgresStreakStore{db: tx, logger: s.logger}
}

// Get returns the streak row, or a zero streak for users without one.
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	streak := domain.Streak{UserID: userID}
	var lastDay sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT current, longest, last_active_day, updated_at
		FROM streaks WHERE user_id = $1`, userID).
		Scan(&streak.Current, &streak.Longest, &lastDay, &streak.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &streak, nil
		}
		return nil, wrap("get", "streak", err)
	}
	if lastDay.Valid {
		day := domain.CalendarDay(lastDay.Time, lastDay.Time.Location())
		streak.LastActiveDay = &day
	}
	return &streak, nil
}

// Upsert saves the streak.
func (s *PostgresStreakStore) Upsert(ctx context.Context, streak *domain.Streak) error {
	if streak.UserID == uuid.Nil {
		return fmt.Errorf("%w: streak without user", store.ErrInvalidEntity)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO streaks (user_id, current, longest, last_active_day, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET current = EXCLUDED.current, longest = EXCLUDED.longest,
		    last_active_day = EXCLUDED.last_active_day, updated_at = EXCLUDED.updated_at`,
		streak.UserID, streak.Current, streak.Longest, streak.LastActiveDay, streak.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save streak",
			slog.String("user_id", streak.UserID.String()), slog.Any("error", err))
		return wrap("upsert", "streak", err)
	}
	return nil
}
