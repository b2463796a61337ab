package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/srs"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/service"
	"github.com/phrazzld/viva-api/internal/service/auth"
)

// errorMapping pairs a sentinel with its status code and client message.
type errorMapping struct {
	err     error
	status  int
	message string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
	{auth.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{auth.ErrExpiredRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{auth.ErrWrongTokenType, http.StatusUnauthorized, "Invalid refresh token"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},

	{service.ErrNotOwned, http.StatusForbidden, "You do not have access to this resource"},

	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrCaseNotFound, http.StatusNotFound, "Case not found"},
	{service.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
	{service.ErrDrillNotFound, http.StatusNotFound, "Drill not found"},

	{service.ErrEmailExists, http.StatusConflict, "Email already exists"},
	{service.ErrConflict, http.StatusConflict, "The session changed, reload and try again"},
	{service.ErrSessionActive, http.StatusConflict, "Session is still in progress"},
	{service.ErrDrillCompleted, http.StatusConflict, "Drill is already completed"},
	{domain.ErrSessionClosed, http.StatusConflict, "Session is already finished"},

	{domain.ErrEmptyAnswer, http.StatusBadRequest, "Answer cannot be empty"},
	{domain.ErrInvalidEmail, http.StatusBadRequest, "Invalid email format"},
	{domain.ErrPasswordTooShort, http.StatusBadRequest, "Password is too short"},
	{domain.ErrPasswordTooLong, http.StatusBadRequest, "Password is too long"},
	{domain.ErrInvalidSettings, http.StatusBadRequest, "Invalid settings"},
	{domain.ErrInvalidID, http.StatusBadRequest, "Invalid ID"},
	{domain.ErrValidation, http.StatusBadRequest, "Validation error"},
	{srs.ErrInvalidDays, http.StatusBadRequest, "Days must be at least 1"},
	{shared.ErrInvalidBody, http.StatusBadRequest, "Invalid request format"},
	{llm.ErrInvalidRequest, http.StatusBadRequest, "Invalid chat request"},

	{llm.ErrContentBlocked, http.StatusUnprocessableEntity, "The model declined to answer"},
	{llm.ErrDisabled, http.StatusServiceUnavailable, "AI features are disabled"},
	{llm.ErrCircuitOpen, http.StatusServiceUnavailable, "AI provider temporarily unavailable"},
	{llm.ErrTransient, http.StatusBadGateway, "AI provider unavailable"},
	{llm.ErrInvalidResponse, http.StatusBadGateway, "AI provider returned an invalid response"},
}

// MapErrorToStatusCode maps an error to an HTTP status without exposing it.
func MapErrorToStatusCode(err error) int {
	if m, ok := lookupError(err); ok {
		return m.status
	}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}
	if m, ok := lookupError(err); ok {
		return m.message
	}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return SanitizeValidationError(verr)
	}
	return "An unexpected error occurred"
}

func lookupError(err error) (errorMapping, bool) {
	if err == nil {
		return errorMapping{}, false
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// SanitizeValidationError describes the first failed field without echoing
// the submitted value.
func SanitizeValidationError(err error) string {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) || len(verr) == 0 {
		return "Validation error"
	}
	fe := verr[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid item"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted details. fallback replaces the generic message of unmapped
// errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
