package store

import (
	"errors"
	"fmt"
)

// Base errors. Every store implementation maps its driver errors onto these.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed covers begin and commit failures in RunInTransaction.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Per-entity variants. errors.Is matches both the variant and its base.
var (
	ErrUserNotFound    = fmt.Errorf("%w: user", ErrNotFound)
	ErrCaseNotFound    = fmt.Errorf("%w: case", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrDrillNotFound   = fmt.Errorf("%w: drill", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("%w: task", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
)

// IsNotFoundError reports whether err is, or wraps, ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is, or wraps, ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which entity and operation a low-level failure came from
// without hiding the mapped sentinel underneath.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the entity and operation it failed on.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
