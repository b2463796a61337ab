// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidPhase is returned for an unknown exam phase name.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrInvalidCase is returned when a case definition is incomplete.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidSessionStatus is returned when a session status is not valid.
	ErrInvalidSessionStatus = errors.New("invalid session status")

	// ErrSessionClosed is returned when an answer is sent to a finished session.
	ErrSessionClosed = errors.New("session is not active")

	// ErrEmptyAnswer is returned when a candidate answer has no content.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrInvalidDrillOutcome is returned when a drill outcome is not valid.
	ErrInvalidDrillOutcome = errors.New("invalid drill outcome")

	// ErrInvalidSettings is returned when user settings fail validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
