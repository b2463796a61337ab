package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

const drillColumns = `id, user_id, session_id, case_id, phase, label, keywords, prompt, status,
	interval, ease_factor, consecutive_correct, attempt_count, last_attempt_at, next_due_at,
	created_at, updated_at`

// PostgresDrillStore implements store.DrillStore.
type PostgresDrillStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDrillStore creates a drill store. A nil logger uses slog.Default.
func NewPostgresDrillStore(db store.DBTX, logger *slog.Logger) *PostgresDrillStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDrillStore{
		db:     db,
		logger: logger.With(slog.String("component", "drill_store")),
	}
}

var _ store.DrillStore = (*PostgresDrillStore)(nil)

// WithTx returns a copy of the store bound to tx.
func (s *PostgresDrillStore) WithTx(tx *sql.Tx) store.DrillStore {
	return &PostgresDrillStore{db: tx, logger: s.logger}
}

// CreateMany inserts drills one statement at a time. Callers that need
// all-or-nothing semantics run it inside a transaction.
func (s *PostgresDrillStore) CreateMany(ctx context.Context, drills []*domain.Drill) error {
	for _, d := range drills {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		keywords, err := keywordsArg(d.Keywords)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO drills (`+drillColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			d.ID, d.UserID, d.SessionID, d.CaseID, d.Phase, d.Label, keywords, d.Prompt, d.Status,
			d.Interval, d.EaseFactor, d.ConsecutiveCorrect, d.AttemptCount, d.LastAttemptAt, d.NextDueAt,
			d.CreatedAt, d.UpdatedAt)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to create drill",
				slog.String("drill_id", d.ID.String()),
				slog.String("session_id", d.SessionID.String()),
				slog.Any("error", err))
			return wrap("create", "drill", err)
		}
	}
	return nil
}

// GetByID returns a drill.
func (s *PostgresDrillStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Drill, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+drillColumns+` FROM drills WHERE id = $1`, id)
	d, err := scanDrill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDrillNotFound
		}
		return nil, wrap("get", "drill", err)
	}
	return d, nil
}

// ListByUser returns drills ordered by due time, oldest first.
func (s *PostgresDrillStore) ListByUser(ctx context.Context, userID uuid.UUID, dueOnly bool, now time.Time, limit int) ([]*domain.Drill, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if dueOnly {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+drillColumns+`
			FROM drills
			WHERE user_id = $1 AND status = $2 AND next_due_at <= $3
			ORDER BY next_due_at, created_at
			LIMIT $4`, userID, domain.DrillStatusPending, now, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+drillColumns+`
			FROM drills
			WHERE user_id = $1
			ORDER BY next_due_at, created_at
			LIMIT $2`, userID, limit)
	}
	if err != nil {
		return nil, wrap("list", "drill", err)
	}
	defer func() { _ = rows.Close() }()

	drills := make([]*domain.Drill, 0)
	for rows.Next() {
		d, err := scanDrill(rows)
		if err != nil {
			return nil, wrap("list", "drill", err)
		}
		drills = append(drills, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", "drill", err)
	}
	return drills, nil
}

// CountBySession returns the number of drills created from a session.
func (s *PostgresDrillStore) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drills WHERE session_id = $1`, sessionID).Scan(&n); err != nil {
		return 0, wrap("count", "drill", err)
	}
	return n, nil
}

// Update writes a drill's scheduling state.
func (s *PostgresDrillStore) Update(ctx context.Context, d *domain.Drill) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE drills
		SET status = $2, interval = $3, ease_factor = $4, consecutive_correct = $5,
		    attempt_count = $6, last_attempt_at = $7, next_due_at = $8, updated_at = $9
		WHERE id = $1`,
		d.ID, d.Status, d.Interval, d.EaseFactor, d.ConsecutiveCorrect,
		d.AttemptCount, d.LastAttemptAt, d.NextDueAt, d.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update drill",
			slog.String("drill_id", d.ID.String()), slog.Any("error", err))
		return wrap("update", "drill", err)
	}
	return CheckRowsAffected(result, store.ErrDrillNotFound)
}

func scanDrill(row rowScanner) (*domain.Drill, error) {
	var (
		d             domain.Drill
		keywords      []byte
		lastAttemptAt sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.UserID, &d.SessionID, &d.CaseID, &d.Phase, &d.Label, &keywords, &d.Prompt, &d.Status,
		&d.Interval, &d.EaseFactor, &d.ConsecutiveCorrect, &d.AttemptCount, &lastAttemptAt, &d.NextDueAt,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastAttemptAt.Valid {
		t := lastAttemptAt.Time
		d.LastAttemptAt = &t
	}
	if len(keywords) > 0 {
		if err := json.Unmarshal(keywords, &d.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode drill keywords: %w", err)
		}
	}
	return &d, nil
}

func keywordsArg(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(b), nil
}
