package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, name)
	}
	return id, nil
}

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathUUID extracts the user ID and a path UUID, writing an
// error response when either is missing.
func handleUserIDAndPathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := getPathUUID(r, name)
	if err != nil {
		logger.FromContext(r.Context()).Warn("invalid path parameter",
			"param_name", name,
			"value", chi.URLParam(r, name))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// pagination reads limit and offset query parameters with defaults and
// bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
