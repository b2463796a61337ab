package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory queue. It never blocks on Enqueue.
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	closed bool
	logger *slog.Logger
}

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue holding at most size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if size < 1 {
		size = 1
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Enqueue adds task to the queue.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.Int("queue_len", len(q.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close stops accepting tasks. Queued tasks remain readable. Close is idempotent.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns the channel workers read from.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
