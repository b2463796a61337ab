package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/phrazzld/viva-api/internal/service"
)

// SessionHandler serves exam sessions.
type SessionHandler struct {
	sessions service.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates the handler.
func NewSessionHandler(sessions service.SessionService, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing a required dependency
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Start handles POST /sessions.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req StartSessionRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, req.CaseID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("case_id", session.CaseID))
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// List handles GET /sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, offset := pagination(r)
	sessions, err := h.sessions.List(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessions)
}

// Get handles GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Get(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Answer handles POST /sessions/{id}/answers.
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req AnswerRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.sessions.Answer(r.Context(), userID, sessionID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Session:  res.Session,
		Answer:   res.Answer,
		Reply:    res.Reply,
		Done:     res.Done,
		RedFlags: res.RedFlags,
	})
}

// Finish handles POST /sessions/{id}/finish.
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	session, err := h.sessions.Finish(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to finish session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, session)
}

// Feedback handles GET /sessions/{id}/feedback. It answers 202 while the
// debrief is still running.
func (h *SessionHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	fb, err := h.sessions.Feedback(r.Context(), userID, sessionID)
	if errors.Is(err, service.ErrFeedbackPending) {
		w.Header().Set("Retry-After", "2")
		shared.RespondWithJSON(w, r, http.StatusAccepted, PendingResponse{Status: "pending"})
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load feedback")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, fb)
}
