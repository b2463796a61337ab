package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/service"
)

// ProfileHandler serves the user's streak and settings.
type ProfileHandler struct {
	streaks  service.StreakService
	settings service.SettingsService
	logger   *slog.Logger
}

// NewProfileHandler creates the handler.
func NewProfileHandler(streaks service.StreakService, settings service.SettingsService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		streaks:  streaks,
		settings: settings,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// Streak handles GET /streak.
func (h *ProfileHandler) Streak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.streaks.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load streak")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// GetSettings handles GET /settings.
func (h *ProfileHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings.
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req SettingsRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	settings, err := h.settings.Update(r.Context(), userID, req.toUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}
