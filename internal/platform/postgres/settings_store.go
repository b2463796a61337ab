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

// PostgresSettingsStore implements store.SettingsStore.
type PostgresSettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSettingsStore creates a settings store. A nil logger uses slog.Default.
func NewPostgresSettingsStore(db store.DBTX, logger *slog.Logger) *PostgresSettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

var _ store.SettingsStore = (*PostgresSettingsStore)(nil)

// Get returns saved settings, or the defaults.
func (s *PostgresSettingsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	settings := domain.Settings{UserID: userID}
	err := s.db.QueryRowContext(ctx, `
		SELECT examiner_mode, strictness, timezone, daily_drill_goal, updated_at
		FROM user_settings WHERE user_id = $1`, userID).
		Scan(&settings.ExaminerMode, &settings.Strictness, &settings.Timezone, &settings.DailyDrillGoal, &settings.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := domain.DefaultSettings(userID)
			return &defaults, nil
		}
		return nil, wrap("get", "settings", err)
	}
	return &settings, nil
}

// Upsert validates and saves settings.
func (s *PostgresSettingsStore) Upsert(ctx context.Context, settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, examiner_mode, strictness, timezone, daily_drill_goal, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET examiner_mode = EXCLUDED.examiner_mode, strictness = EXCLUDED.strictness,
		    timezone = EXCLUDED.timezone, daily_drill_goal = EXCLUDED.daily_drill_goal,
		    updated_at = EXCLUDED.updated_at`,
		settings.UserID, settings.ExaminerMode, settings.Strictness, settings.Timezone,
		settings.DailyDrillGoal, settings.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to save settings",
			slog.String("user_id", settings.UserID.String()), slog.Any("error", err))
		return wrap("upsert", "settings", err)
	}
	return nil
}
