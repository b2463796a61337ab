package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/phrazzld/viva-api/internal/task"
)

// PostgresTaskStore implements task.TaskStore.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a task store.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a copy of the store bound to tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// SaveTask inserts t with its current status.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID(), t.Type(), string(t.Payload()), t.Status(), now, now)
	if err != nil {
		logger.FromContext(ctx).Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.Any("error", err))
		return wrap("create", "task", err)
	}
	return nil
}

// UpdateTaskStatus sets the status and error message. Unknown IDs are a no-op.
func (s *PostgresTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	var msg sql.NullString
	if errorMsg != "" {
		msg = sql.NullString{String: errorMsg, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4`,
		status, msg, time.Now().UTC(), taskID)
	if err != nil {
		return wrap("update", "task", err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		logger.FromContext(ctx).Warn("task status update matched no rows",
			slog.String("task_id", taskID.String()))
	}
	return nil
}

// GetPendingTasks returns pending tasks, oldest first.
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Record, error) {
	return s.byStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks returns processing tasks idle for longer than olderThan.
func (s *PostgresTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Record, error) {
	return s.byStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) byStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Record, error) {
	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks WHERE status = $1`
	args := []any{status}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list", "task", err)
	}
	defer func() { _ = rows.Close() }()

	var records []task.Record
	for rows.Next() {
		var (
			rec     task.Record
			errMsg  sql.NullString
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Type, &payload, &rec.Status, &errMsg, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		rec.Payload = payload
		rec.ErrorMessage = errMsg.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", "task", err)
	}
	return records, nil
}
