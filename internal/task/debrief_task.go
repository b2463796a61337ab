package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// TypeSessionDebrief builds the feedback and drills for a finished session.
const TypeSessionDebrief = "session_debrief"

var (
	ErrNilDebriefer   = errors.New("debriefer cannot be nil")
	ErrEmptySessionID = errors.New("session ID cannot be empty")
)

// Debriefer produces the post-session debrief. It must be idempotent: a
// recovered task may run again for a session that was already debriefed.
type Debriefer interface {
	Debrief(ctx context.Context, sessionID uuid.UUID) error
}

type debriefPayload struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// DebriefTask runs a Debriefer for one session.
type DebriefTask struct {
	id        uuid.UUID
	payload   debriefPayload
	debriefer Debriefer
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

var _ Task = (*DebriefTask)(nil)

// NewDebriefTask creates a pending debrief task.
func NewDebriefTask(sessionID, userID uuid.UUID, debriefer Debriefer, logger *slog.Logger) (*DebriefTask, error) {
	return newDebriefTask(uuid.New(), debriefPayload{SessionID: sessionID, UserID: userID}, debriefer, logger)
}

func newDebriefTask(id uuid.UUID, payload debriefPayload, debriefer Debriefer, logger *slog.Logger) (*DebriefTask, error) {
	if debriefer == nil {
		return nil, ErrNilDebriefer
	}
	if payload.SessionID == uuid.Nil {
		return nil, ErrEmptySessionID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DebriefTask{
		id:        id,
		payload:   payload,
		debriefer: debriefer,
		logger: logger.With(
			slog.String("task_type", TypeSessionDebrief),
			slog.String("session_id", payload.SessionID.String())),
		status: TaskStatusPending,
	}, nil
}

// DebriefFactory returns a Factory that rebuilds stored debrief tasks.
func DebriefFactory(debriefer Debriefer, logger *slog.Logger) Factory {
	return func(rec Record) (Task, error) {
		var p debriefPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid debrief payload: %w", err)
		}
		return newDebriefTask(rec.ID, p, debriefer, logger)
	}
}

func (t *DebriefTask) ID() uuid.UUID { return t.id }

func (t *DebriefTask) Type() string { return TypeSessionDebrief }

// SessionID returns the session being debriefed.
func (t *DebriefTask) SessionID() uuid.UUID { return t.payload.SessionID }

func (t *DebriefTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		t.logger.Error("failed to encode task payload", slog.Any("error", err))
		return []byte("{}")
	}
	return data
}

func (t *DebriefTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *DebriefTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Execute runs the debrief.
func (t *DebriefTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	if err := ctx.Err(); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("debrief cancelled: %w", err)
	}

	t.logger.InfoContext(ctx, "building session debrief")
	if err := t.debriefer.Debrief(ctx, t.payload.SessionID); err != nil {
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("debrief for session %s failed: %w", t.payload.SessionID, err)
	}

	t.setStatus(TaskStatusCompleted)
	t.logger.InfoContext(ctx, "session debrief stored")
	return nil
}
