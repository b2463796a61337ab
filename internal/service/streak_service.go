package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// StreakView is a user's streak as seen from today in their timezone.
type StreakView struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastActiveDay *time.Time `json:"last_active_day,omitempty"`
	ActiveToday   bool       `json:"active_today"`
}

// StreakService reads practice streaks.
type StreakService interface {
	Get(ctx context.Context, userID uuid.UUID) (*StreakView, error)
}

type streakService struct {
	streaks  store.StreakStore
	settings store.SettingsStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewStreakService creates the streak service.
func NewStreakService(streaks store.StreakStore, settings store.SettingsStore, logger *slog.Logger) StreakService {
	if logger == nil {
		logger = slog.Default()
	}
	return &streakService{
		streaks:  streaks,
		settings: settings,
		logger:   logger.With("component", "streak_service"),
		now:      time.Now,
	}
}

func (s *streakService) Get(ctx context.Context, userID uuid.UUID) (*StreakView, error) {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, newError("streak", "get", "failed to load settings", err)
	}
	streak, err := s.streaks.Get(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load streak", "error", err, "user_id", userID)
		return nil, newError("streak", "get", "failed to load streak", err)
	}

	today := domain.CalendarDay(s.now(), settings.Location())
	view := &StreakView{
		Current:       streak.CurrentAsOf(today),
		Longest:       streak.Longest,
		LastActiveDay: streak.LastActiveDay,
	}
	view.ActiveToday = streak.LastActiveDay != nil && streak.LastActiveDay.Equal(today)
	return view, nil
}
