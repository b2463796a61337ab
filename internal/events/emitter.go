package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter dispatches events synchronously to handlers subscribed to
// the event type.
type InMemoryEmitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

var _ Emitter = (*InMemoryEmitter)(nil)

// NewInMemoryEmitter creates an emitter with no subscriptions.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEmitter{
		handlers: make(map[string][]Handler),
		logger:   logger.With(slog.String("component", "event_emitter")),
	}
}

// Subscribe registers h for events of eventType.
func (e *InMemoryEmitter) Subscribe(eventType string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eventType] = append(e.handlers[eventType], h)
	e.logger.Debug("handler subscribed",
		slog.String("event_type", eventType),
		slog.Int("handler_count", len(e.handlers[eventType])))
}

// Emit delivers event to every subscribed handler. All handlers run even if
// one fails; the first error is returned.
func (e *InMemoryEmitter) Emit(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event.Type]...)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.WarnContext(ctx, "no handlers for event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.Type))
		return nil
	}

	var firstErr error
	for i, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			e.logger.ErrorContext(ctx, "event handler failed",
				slog.Int("handler_index", i),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
