package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/phrazzld/viva-api/internal/domain/srs"
	"github.com/phrazzld/viva-api/internal/store"
)

// DrillService manages the practice drills seeded by session debriefs.
type DrillService interface {
	// List returns the user's drills. Unless all is set only pending drills
	// that are due now are returned.
	List(ctx context.Context, userID uuid.UUID, all bool, limit int) ([]*domain.Drill, error)

	// Attempt grades a free-text answer to a drill and reschedules it.
	Attempt(ctx context.Context, userID, drillID uuid.UUID, text string) (*DrillAttemptResult, error)

	// Postpone pushes a drill's due date back by days.
	Postpone(ctx context.Context, userID, drillID uuid.UUID, days int) (*domain.Drill, error)
}

// DrillAttemptResult is the graded outcome of one drill attempt.
type DrillAttemptResult struct {
	Drill     *domain.Drill       `json:"drill"`
	Outcome   domain.DrillOutcome `json:"outcome"`
	Matched   []string            `json:"matched"`
	Completed bool                `json:"completed"`
}

type drillService struct {
	db      *sql.DB
	drills  store.DrillStore
	streaks store.StreakStore
	setting store.SettingsStore
	srs     srs.Service
	logger  *slog.Logger
	now     func() time.Time
}

var _ DrillService = (*drillService)(nil)

// NewDrillService creates the drill service. A nil scheduler uses the
// default SRS parameters.
func NewDrillService(
	db *sql.DB,
	drills store.DrillStore,
	streaks store.StreakStore,
	settings store.SettingsStore,
	scheduler srs.Service,
	logger *slog.Logger,
) (DrillService, error) {
	if db == nil || drills == nil || streaks == nil || settings == nil {
		return nil, &ServiceError{Service: "drill", Operation: "create_service", Message: "db and stores are required"}
	}
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &drillService{
		db:      db,
		drills:  drills,
		streaks: streaks,
		setting: settings,
		srs:     scheduler,
		logger:  logger.With("component", "drill_service"),
		now:     time.Now,
	}, nil
}

func (s *drillService) List(ctx context.Context, userID uuid.UUID, all bool, limit int) ([]*domain.Drill, error) {
	drills, err := s.drills.ListByUser(ctx, userID, !all, s.now().UTC(), limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list drills", "error", err, "user_id", userID)
		return nil, newError("drill", "list", "failed to list drills", err)
	}
	return drills, nil
}

// GradeDrill grades text against the drill's keywords: every keyword is
// easy, some keywords is good, none is again.
func GradeDrill(d *domain.Drill, text string) (domain.DrillOutcome, []string) {
	normalized := examiner.Normalize(text)
	var matched []string
	total := 0
	for _, kw := range d.Keywords {
		k := examiner.Normalize(kw)
		if k == "" {
			continue
		}
		total++
		if strings.Contains(normalized, k) {
			matched = append(matched, kw)
		}
	}
	switch {
	case total > 0 && len(matched) == total:
		return domain.DrillOutcomeEasy, matched
	case len(matched) > 0:
		return domain.DrillOutcomeGood, matched
	default:
		return domain.DrillOutcomeAgain, []string{}
	}
}

func (s *drillService) Attempt(ctx context.Context, userID, drillID uuid.UUID, text string) (*DrillAttemptResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyAnswer
	}
	settings, err := s.setting.Get(ctx, userID)
	if err != nil {
		return nil, newError("drill", "attempt", "failed to load settings", err)
	}
	now := s.now().UTC()
	var result *DrillAttemptResult

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txDrills := s.drills.WithTx(tx)

		drill, err := s.ownedDrill(ctx, txDrills, userID, drillID)
		if err != nil {
			return err
		}
		if drill.Status == domain.DrillStatusCompleted {
			return ErrDrillCompleted
		}

		outcome, matched := GradeDrill(drill, text)
		next, err := s.srs.CalculateNextReview(drill, outcome, now)
		if err != nil {
			return err
		}
		if next.ConsecutiveCorrect >= domain.DrillCompletionStreak {
			next.Status = domain.DrillStatusCompleted
		}
		if err := txDrills.Update(ctx, next); err != nil {
			return err
		}
		day := domain.CalendarDay(now, settings.Location())
		if err := recordActivity(ctx, s.streaks.WithTx(tx), userID, day, now); err != nil {
			return err
		}

		result = &DrillAttemptResult{
			Drill:     next,
			Outcome:   outcome,
			Matched:   matched,
			Completed: next.Status == domain.DrillStatusCompleted,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotOwned) && !errors.Is(err, ErrDrillCompleted) && !errors.Is(err, store.ErrDrillNotFound) {
			s.logger.ErrorContext(ctx, "failed to record drill attempt", "error", err, "drill_id", drillID)
		}
		return nil, newError("drill", "attempt", "failed to record attempt", err)
	}

	s.logger.InfoContext(ctx, "drill attempted",
		"drill_id", drillID,
		"user_id", userID,
		"outcome", result.Outcome,
		"completed", result.Completed)
	return result, nil
}

func (s *drillService) Postpone(ctx context.Context, userID, drillID uuid.UUID, days int) (*domain.Drill, error) {
	now := s.now().UTC()
	var out *domain.Drill

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txDrills := s.drills.WithTx(tx)

		drill, err := s.ownedDrill(ctx, txDrills, userID, drillID)
		if err != nil {
			return err
		}
		if drill.Status == domain.DrillStatusCompleted {
			return ErrDrillCompleted
		}
		next, err := s.srs.PostponeReview(drill, days, now)
		if err != nil {
			return err
		}
		if err := txDrills.Update(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, newError("drill", "postpone", "failed to postpone drill", err)
	}

	s.logger.InfoContext(ctx, "drill postponed",
		"drill_id", drillID,
		"days", days,
		"next_due_at", out.NextDueAt)
	return out, nil
}

func (s *drillService) ownedDrill(ctx context.Context, drills store.DrillStore, userID, drillID uuid.UUID) (*domain.Drill, error) {
	drill, err := drills.GetByID(ctx, drillID)
	if err != nil {
		return nil, err
	}
	if drill.UserID != userID {
		s.logger.WarnContext(ctx, "drill accessed by another user",
			"drill_id", drillID,
			"owner_id", drill.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return drill, nil
}
