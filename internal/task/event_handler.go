package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/viva-api/internal/events"
)

// SessionFinishedHandler turns session.finished events into debrief tasks.
type SessionFinishedHandler struct {
	submitter Submitter
	debriefer Debriefer
	logger    *slog.Logger
}

var _ events.Handler = (*SessionFinishedHandler)(nil)

// NewSessionFinishedHandler creates the handler.
func NewSessionFinishedHandler(submitter Submitter, debriefer Debriefer, logger *slog.Logger) *SessionFinishedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionFinishedHandler{
		submitter: submitter,
		debriefer: debriefer,
		logger:    logger.With(slog.String("component", "session_finished_handler")),
	}
}

// Handle decodes the event and submits a DebriefTask.
func (h *SessionFinishedHandler) Handle(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeSessionFinished {
		h.logger.DebugContext(ctx, "ignoring event", slog.String("event_type", event.Type))
		return nil
	}

	var payload events.SessionFinished
	if err := event.Decode(&payload); err != nil {
		return err
	}

	t, err := NewDebriefTask(payload.SessionID, payload.UserID, h.debriefer, h.logger)
	if err != nil {
		return fmt.Errorf("failed to create debrief task: %w", err)
	}
	if err := h.submitter.Submit(ctx, t); err != nil {
		return fmt.Errorf("failed to submit debrief task: %w", err)
	}

	h.logger.InfoContext(ctx, "debrief task submitted",
		slog.String("task_id", t.ID().String()),
		slog.String("session_id", payload.SessionID.String()),
		slog.String("event_id", event.ID.String()))
	return nil
}
