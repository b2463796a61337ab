package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/viva-api/internal/store"
)

// Service sentinels. The API layer maps these to HTTP status codes.
var (
	// ErrNotOwned indicates a resource belongs to a different user.
	ErrNotOwned = errors.New("resource is owned by another user")

	ErrUserNotFound    = errors.New("user not found")
	ErrCaseNotFound    = errors.New("case not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrDrillNotFound   = errors.New("drill not found")

	// ErrEmailExists indicates registration with an email already in use.
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrFeedbackPending indicates the session is finished but its debrief
	// has not been produced yet.
	ErrFeedbackPending = errors.New("feedback is not ready yet")

	// ErrSessionActive indicates feedback was requested for a running session.
	ErrSessionActive = errors.New("session is still active")

	// ErrConflict indicates a concurrent update of the same session.
	ErrConflict = errors.New("concurrent update")

	// ErrDrillCompleted indicates an attempt on a completed drill.
	ErrDrillCompleted = errors.New("drill is already completed")
)

// ServiceError wraps unexpected failures with the operation that failed.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// storeSentinels translates store errors into service sentinels.
var storeSentinels = []struct {
	from, to error
}{
	{store.ErrUserNotFound, ErrUserNotFound},
	{store.ErrCaseNotFound, ErrCaseNotFound},
	{store.ErrSessionNotFound, ErrSessionNotFound},
	{store.ErrDrillNotFound, ErrDrillNotFound},
	{store.ErrEmailExists, ErrEmailExists},
}

var serviceSentinels = []error{
	ErrNotOwned,
	ErrUserNotFound,
	ErrCaseNotFound,
	ErrSessionNotFound,
	ErrDrillNotFound,
	ErrEmailExists,
	ErrInvalidCredentials,
	ErrFeedbackPending,
	ErrSessionActive,
	ErrConflict,
	ErrDrillCompleted,
}

// newError returns known sentinels directly and wraps everything else.
// Domain validation errors stay reachable through Unwrap.
func newError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range serviceSentinels {
		if errors.Is(err, s) {
			return s
		}
	}
	for _, m := range storeSentinels {
		if errors.Is(err, m.from) {
			return m.to
		}
	}
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
