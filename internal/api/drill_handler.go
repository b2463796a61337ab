package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/phrazzld/viva-api/internal/service"
)

// DrillHandler serves practice drills.
type DrillHandler struct {
	drills service.DrillService
	logger *slog.Logger
}

// NewDrillHandler creates the handler.
func NewDrillHandler(drills service.DrillService, logger *slog.Logger) *DrillHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing a required dependency
		panic("logger cannot be nil for DrillHandler")
	}
	return &DrillHandler{drills: drills, logger: logger.With(slog.String("component", "drill_handler"))}
}

// List handles GET /drills. Only due drills are returned unless all=true.
func (h *DrillHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, _ := pagination(r)
	drills, err := h.drills.List(r.Context(), userID, queryBool(r, "all"), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list drills")
		return
	}
	out := make([]DrillResponse, 0, len(drills))
	for _, d := range drills {
		out = append(out, drillToResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Attempt handles POST /drills/{id}/attempts.
func (h *DrillHandler) Attempt(w http.ResponseWriter, r *http.Request) {
	userID, drillID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req DrillAttemptRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	res, err := h.drills.Attempt(r.Context(), userID, drillID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit attempt")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("drill attempt graded",
		slog.String("drill_id", drillID.String()),
		slog.String("outcome", string(res.Outcome)))

	matched := res.Matched
	if matched == nil {
		matched = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DrillAttemptResponse{
		Drill:     drillToResponse(res.Drill),
		Outcome:   res.Outcome,
		Matched:   matched,
		Completed: res.Completed,
	})
}

// Postpone handles POST /drills/{id}/postpone.
func (h *DrillHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	userID, drillID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	var req PostponeDrillRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	drill, err := h.drills.Postpone(r.Context(), userID, drillID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone drill")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, drillToResponse(drill))
}
