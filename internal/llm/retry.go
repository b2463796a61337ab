package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// RetryConfig controls retries and the circuit breaker.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// Timeout bounds each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive retryable failures that
	// opens the circuit. Zero disables the breaker.
	FailureThreshold int
	// SuccessThreshold is the number of successful probes needed to close a
	// half-open circuit.
	SuccessThreshold int
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

// DefaultRetryConfig returns the retry policy used by the server.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		Timeout:           60 * time.Second,
		FailureThreshold:  5,
		SuccessThreshold:  2,
		OpenTimeout:       30 * time.Second,
	}
}

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker fails fast after repeated upstream failures.
type CircuitBreaker struct {
	mu sync.Mutex

	state            CircuitState
	failures         int
	successes        int
	openedAt         time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(failureThreshold, successThreshold int, openTimeout time.Duration) *CircuitBreaker {
	if successThreshold < 1 {
		successThreshold = 1
	}
	return &CircuitBreaker{
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
		now:              time.Now,
	}
}

// Allow returns ErrCircuitOpen while the circuit is open. Once OpenTimeout
// has passed the circuit moves to half-open and lets probes through.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.openedAt) < cb.openTimeout {
			return ErrCircuitOpen
		}
		cb.state = CircuitHalfOpen
		cb.successes = 0
	}
	return nil
}

// RecordSuccess resets the failure count, closing a half-open circuit after
// enough successes.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

// RecordFailure counts a retryable failure. A failure while half-open
// reopens the circuit immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.open()
		}
	case CircuitHalfOpen:
		cb.open()
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) open() {
	cb.state = CircuitOpen
	cb.successes = 0
	cb.openedAt = cb.now()
}

// Retrying wraps a Client with retries and a circuit breaker.
type Retrying struct {
	next    Client
	config  RetryConfig
	breaker *CircuitBreaker
	logger  *slog.Logger

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// NewRetrying wraps next with the given retry policy.
func NewRetrying(next Client, config RetryConfig, logger *slog.Logger) *Retrying {
	if next == nil {
		panic("llm: nil client")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BackoffMultiplier < 1 {
		config.BackoffMultiplier = 1
	}
	r := &Retrying{
		next:   next,
		config: config,
		logger: logger.With("component", "llm_retry"),
		sleep:  sleepContext,
		jitter: func() float64 { return 0.5 + rand.Float64()*0.5 },
	}
	if config.FailureThreshold > 0 {
		r.breaker = NewCircuitBreaker(config.FailureThreshold, config.SuccessThreshold, config.OpenTimeout)
	}
	return r
}

// Breaker returns the circuit breaker, or nil when it is disabled.
func (r *Retrying) Breaker() *CircuitBreaker {
	return r.breaker
}

// Complete sends req, retrying transient failures with exponential backoff.
// Permanent errors are returned immediately.
func (r *Retrying) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	backoff := r.config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if r.breaker != nil {
			if err := r.breaker.Allow(); err != nil {
				r.logger.WarnContext(ctx, "language model call rejected by circuit breaker",
					"attempt", attempt+1)
				return nil, err
			}
		}

		resp, err := r.attempt(ctx, req)
		if err == nil {
			if r.breaker != nil {
				r.breaker.RecordSuccess()
			}
			if attempt > 0 {
				r.logger.InfoContext(ctx, "language model call succeeded after retry", "attempt", attempt+1)
			}
			return resp, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			r.logger.WarnContext(ctx, "permanent language model error, not retrying", "error", err)
			return nil, err
		}
		if r.breaker != nil {
			r.breaker.RecordFailure()
		}
		if attempt == r.config.MaxRetries {
			break
		}

		delay := time.Duration(float64(backoff) * r.jitter())
		r.logger.InfoContext(ctx, "retrying language model call",
			"attempt", attempt+1,
			"max_attempts", r.config.MaxRetries+1,
			"delay", delay,
			"error", err)
		if err := r.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: cancelled during backoff: %w", ErrTransient, err)
		}

		backoff = time.Duration(float64(backoff) * r.config.BackoffMultiplier)
		if r.config.MaxBackoff > 0 && backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

func (r *Retrying) attempt(ctx context.Context, req Request) (*Response, error) {
	if r.config.Timeout <= 0 {
		return r.next.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()
	return r.next.Complete(attemptCtx, req)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Client = (*Retrying)(nil)
