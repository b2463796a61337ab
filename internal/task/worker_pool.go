package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ProcessFunc handles one task. It owns status bookkeeping.
type ProcessFunc func(ctx context.Context, task Task, workerID int)

// WorkerPool runs a fixed number of goroutines that drain a queue.
type WorkerPool struct {
	queue       TaskQueueReader
	workerCount int
	process     ProcessFunc
	logger      *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// WorkerPoolConfig configures a WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount below one means one worker.
	WorkerCount int
}

// NewWorkerPool creates a stopped pool.
func NewWorkerPool(queue TaskQueueReader, config WorkerPoolConfig, process ProcessFunc, logger *slog.Logger) *WorkerPool {
	count := config.WorkerCount
	if count <= 0 {
		logger.Warn("invalid worker count, using 1", slog.Int("specified_count", config.WorkerCount))
		count = 1
	}
	return &WorkerPool{
		queue:       queue,
		workerCount: count,
		process:     process,
		logger:      logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled, Stop is
// called, or the queue channel is closed.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight tasks to return.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	p.logger.Debug("worker started", slog.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("worker stopped", slog.Int("worker_id", id))
			return
		case t, ok := <-p.queue.GetChannel():
			if !ok {
				p.logger.Debug("queue closed, worker exiting", slog.Int("worker_id", id))
				return
			}
			p.safeProcess(ctx, t, id)
		}
	}
}

func (p *WorkerPool) safeProcess(ctx context.Context, t Task, id int) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
		}
	}()
	p.process(ctx, t, id)
}
