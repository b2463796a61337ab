package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeSessionFinished is emitted when an exam session is completed.
	TypeSessionFinished = "session.finished"
)

// Event is a notification that something happened in the domain.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// SessionFinished is the payload of TypeSessionFinished.
type SessionFinished struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	CaseID    string    `json:"case_id"`
}

// New creates an event with a JSON-encoded payload.
func New(eventType string, payload any) (*Event, error) {
	if eventType == "" {
		return nil, fmt.Errorf("event type is required")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Handler reacts to events.
type Handler interface {
	Handle(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to subscribed handlers.
type Emitter interface {
	Emit(ctx context.Context, event *Event) error
}
