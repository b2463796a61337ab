package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/phrazzld/viva-api/internal/service"
	"github.com/phrazzld/viva-api/internal/service/auth"
)

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	authConfig *config.AuthConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthHandler creates the handler.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		authConfig: authConfig,
		logger:     logger.With(slog.String("component", "auth_handler")),
		now:        time.Now,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	h.respondWithTokens(w, r, http.StatusCreated, user.ID)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		status := MapErrorToStatusCode(err)
		var opts []shared.ResponseOption
		if status == http.StatusUnauthorized {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		msg := GetSafeErrorMessage(err)
		if status == http.StatusInternalServerError {
			msg = "Failed to authenticate user"
		}
		shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
		return
	}
	h.respondWithTokens(w, r, http.StatusOK, user.ID)
}

// RefreshToken handles POST /auth/refresh. A valid refresh token yields a
// new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid refresh token", err,
			shared.WithElevatedLogLevel())
		return
	}
	h.respondWithTokens(w, r, http.StatusOK, claims.UserID)
}

func (h *AuthHandler) respondWithTokens(w http.ResponseWriter, r *http.Request, status int, userID uuid.UUID) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	access, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		log.Error("failed to generate access token", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}
	refresh, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		log.Error("failed to generate refresh token", "error", err, "user_id", userID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	lifetime := time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute
	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    h.now().UTC().Add(lifetime).Format(time.RFC3339),
	})
}
