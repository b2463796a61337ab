package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// SettingsUpdate is a partial settings change. Nil fields are kept.
type SettingsUpdate struct {
	ExaminerMode   *domain.ExaminerMode
	Strictness     *domain.Strictness
	Timezone       *string
	DailyDrillGoal *int
}

// SettingsService reads and updates user settings.
type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
	Update(ctx context.Context, userID uuid.UUID, update SettingsUpdate) (*domain.Settings, error)
}

type settingsService struct {
	settings store.SettingsStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewSettingsService creates the settings service.
func NewSettingsService(settings store.SettingsStore, logger *slog.Logger) SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		settings: settings,
		logger:   logger.With("component", "settings_service"),
		now:      time.Now,
	}
}

func (s *settingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, newError("settings", "get", "failed to load settings", err)
	}
	return settings, nil
}

// Update applies update on top of the current settings. Changes apply to
// sessions started afterwards.
func (s *settingsService) Update(ctx context.Context, userID uuid.UUID, update SettingsUpdate) (*domain.Settings, error) {
	current, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, newError("settings", "update", "failed to load settings", err)
	}
	next := *current
	next.UserID = userID
	if update.ExaminerMode != nil {
		next.ExaminerMode = *update.ExaminerMode
	}
	if update.Strictness != nil {
		next.Strictness = *update.Strictness
	}
	if update.Timezone != nil {
		next.Timezone = *update.Timezone
	}
	if update.DailyDrillGoal != nil {
		next.DailyDrillGoal = *update.DailyDrillGoal
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.settings.Upsert(ctx, &next); err != nil {
		s.logger.ErrorContext(ctx, "failed to save settings", "error", err, "user_id", userID)
		return nil, newError("settings", "update", "failed to save settings", err)
	}
	s.logger.InfoContext(ctx, "settings updated",
		"user_id", userID,
		"mode", next.ExaminerMode,
		"strictness", next.Strictness)
	return &next, nil
}
