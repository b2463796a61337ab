package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/service"
	"github.com/phrazzld/viva-api/internal/store"
)

// CaseHandler serves the case catalog. Checklists never leave the server.
type CaseHandler struct {
	cases  store.CaseStore
	logger *slog.Logger
}

// NewCaseHandler creates the handler.
func NewCaseHandler(cases store.CaseStore, logger *slog.Logger) *CaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaseHandler{cases: cases, logger: logger.With(slog.String("component", "case_handler"))}
}

// List handles GET /cases.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.cases.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cases")
		return
	}
	out := make([]domain.CaseSummary, 0, len(cases))
	for _, c := range cases {
		out = append(out, c.Summary())
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /cases/{id}.
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if store.IsNotFoundError(err) {
			err = service.ErrCaseNotFound
		}
		HandleAPIError(w, r, err, "Failed to load case")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, caseToDetail(c))
}
