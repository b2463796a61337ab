package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig configures a TaskRunner.
type TaskRunnerConfig struct {
	WorkerCount int
	QueueSize   int

	// StuckTaskAge is how long a task may stay in processing before the
	// monitor resets it to pending.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defaults to five minutes.
	StuckTaskCheckInterval time.Duration

	// MaxAttempts bounds how often a failing task runs before it is marked
	// failed. Defaults to 3.
	MaxAttempts int

	// RetryDelay is the wait before the first retry. It doubles per attempt
	// and defaults to five seconds.
	RetryDelay time.Duration
}

// DefaultTaskRunnerConfig returns the defaults used by the server.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
		MaxAttempts:            3,
		RetryDelay:             5 * time.Second,
	}
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskRunner persists, queues and executes tasks.
type TaskRunner struct {
	store    TaskStore
	registry *Registry
	queue    *TaskQueue
	pool     *WorkerPool
	config   TaskRunnerConfig
	logger   *slog.Logger

	errHandler func(task Task, err error)

	attemptsMu sync.Mutex
	attempts   map[uuid.UUID]int

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

var _ Submitter = (*TaskRunner)(nil)

// NewTaskRunner creates a stopped runner. registry is used to rebuild tasks
// found in the store at startup and by the stuck-task monitor.
func NewTaskRunner(store TaskStore, registry *Registry, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval <= 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}
	if registry == nil {
		registry = NewRegistry()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	r := &TaskRunner{
		store:    store,
		registry: registry,
		queue:    NewTaskQueue(config.QueueSize, logger),
		config:   config,
		logger:   logger,
		attempts: make(map[uuid.UUID]int),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.Any("error", err))
		},
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processTask, logger)
	return r
}

// SetErrorHandler replaces the handler called after a task has failed its
// last attempt.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit saves task as pending and queues it. If the queue is full the task
// stays pending in the store and is picked up on the next recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to queue task %s: %w", task.ID(), err)
	}
	return nil
}

// Start recovers unfinished tasks, then starts the workers and the
// stuck-task monitor.
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.pool.Start(ctx)

	r.wg.Add(1)
	go r.stuckTaskMonitor(ctx)
	return nil
}

// Stop shuts down the monitor and workers, waiting for in-flight tasks.
// Queued tasks and tasks waiting for a retry stay pending in the store.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		// Workers schedule retries, so they stop before the wait.
		r.pool.Stop()
		r.wg.Wait()
		r.queue.Close()
	})
}

// Recover requeues pending tasks and resets tasks left in processing.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}
	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, rec := range pending {
		r.requeue(ctx, rec)
	}
	for _, rec := range processing {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "reset after restart"); err != nil {
			r.logger.Error("failed to reset processing task",
				slog.String("task_id", rec.ID.String()), slog.Any("error", err))
			continue
		}
		r.requeue(ctx, rec)
	}
	return nil
}

func (r *TaskRunner) requeue(ctx context.Context, rec Record) {
	log := r.logger.With(slog.String("task_id", rec.ID.String()), slog.String("task_type", rec.Type))

	t, err := r.registry.Rehydrate(rec)
	if err != nil {
		log.Error("cannot rebuild task, marking failed", slog.Any("error", err))
		if uerr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); uerr != nil {
			log.Error("failed to mark task failed", slog.Any("error", uerr))
		}
		return
	}
	if err := r.queue.Enqueue(t); err != nil {
		log.Error("failed to requeue task", slog.Any("error", err))
		return
	}
	log.Info("task requeued")
}

func (r *TaskRunner) processTask(ctx context.Context, t Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker_id", workerID))

	// Status writes must land even while shutting down.
	bookkeeping := context.WithoutCancel(ctx)

	if err := r.store.UpdateTaskStatus(bookkeeping, t.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to mark task processing", slog.Any("error", err))
		return
	}

	log.Info("processing task")
	start := time.Now()
	err := t.Execute(ctx)
	if err != nil {
		attempt := r.recordAttempt(t.ID())
		if attempt < r.config.MaxAttempts && ctx.Err() == nil {
			r.scheduleRetry(ctx, t, attempt, err, log)
			return
		}
		r.forgetAttempts(t.ID())
		if uerr := r.store.UpdateTaskStatus(bookkeeping, t.ID(), TaskStatusFailed, err.Error()); uerr != nil {
			log.Error("failed to mark task failed", slog.Any("error", uerr))
		}
		r.errHandler(t, err)
		return
	}
	r.forgetAttempts(t.ID())

	if uerr := r.store.UpdateTaskStatus(bookkeeping, t.ID(), TaskStatusCompleted, ""); uerr != nil {
		log.Error("failed to mark task completed", slog.Any("error", uerr))
	}
	log.Info("task completed", slog.Duration("duration", time.Since(start)))
}

// scheduleRetry puts t back to pending and requeues it after an exponential
// delay. If the runner stops first, the task stays pending for Recover.
func (r *TaskRunner) scheduleRetry(ctx context.Context, t Task, attempt int, cause error, log *slog.Logger) {
	delay := r.config.RetryDelay << (attempt - 1)
	if err := r.store.UpdateTaskStatus(context.WithoutCancel(ctx), t.ID(), TaskStatusPending, cause.Error()); err != nil {
		log.Error("failed to reset task for retry", slog.Any("error", err))
	}
	log.Warn("task failed, retrying",
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", r.config.MaxAttempts),
		slog.Duration("delay", delay),
		slog.Any("error", cause))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := r.queue.Enqueue(t); err != nil {
			log.Error("failed to requeue task for retry", slog.Any("error", err))
		}
	}()
}

func (r *TaskRunner) recordAttempt(id uuid.UUID) int {
	r.attemptsMu.Lock()
	defer r.attemptsMu.Unlock()
	r.attempts[id]++
	return r.attempts[id]
}

func (r *TaskRunner) forgetAttempts(id uuid.UUID) {
	r.attemptsMu.Lock()
	delete(r.attempts, id)
	r.attemptsMu.Unlock()
}

func (r *TaskRunner) stuckTaskMonitor(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks(ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", slog.Any("error", err))
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Warn("found stuck tasks", slog.Int("count", len(stuck)))
	for _, rec := range stuck {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "reset after being stuck in processing"); err != nil {
			r.logger.Error("failed to reset stuck task",
				slog.String("task_id", rec.ID.String()), slog.Any("error", err))
			continue
		}
		r.requeue(ctx, rec)
	}
}
