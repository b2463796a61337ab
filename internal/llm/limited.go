package llm

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Limited bounds the number of concurrent calls to the wrapped client.
type Limited struct {
	next Client
	sem  *semaphore.Weighted
}

// NewLimited allows at most n concurrent calls to next. n < 1 is treated
// as 1.
func NewLimited(next Client, n int) *Limited {
	if n < 1 {
		n = 1
	}
	return &Limited{next: next, sem: semaphore.NewWeighted(int64(n))}
}

// Complete waits for a free slot, honoring ctx, then calls the wrapped client.
func (l *Limited) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire language model slot: %w", err)
	}
	defer l.sem.Release(1)
	return l.next.Complete(ctx, req)
}

var _ Client = (*Limited)(nil)
