package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task is a unit of background work.
type Task interface {
	ID() uuid.UUID
	Type() string
	// Payload is the JSON that Registry.Rehydrate needs to rebuild the task.
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Record is a task as persisted by a TaskStore.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskQueueReader gives workers read access to queued tasks.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter accepts tasks for processing.
type TaskQueueWriter interface {
	// Enqueue fails with ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error
	Close()
}

// TaskStore persists tasks.
type TaskStore interface {
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus sets the status. Unknown IDs are a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns processing tasks last updated more than
	// olderThan ago. Zero returns all of them.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)

	WithTx(tx *sql.Tx) TaskStore
}
