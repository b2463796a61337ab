package store

import (
	"context"

	"github.com/phrazzld/viva-api/internal/domain"
)

// CaseStore provides read access to the case library.
type CaseStore interface {
	// List returns all cases ordered by ID.
	List(ctx context.Context) ([]*domain.Case, error)

	// Get returns the case with the given ID.
	// Returns ErrCaseNotFound if no such case exists.
	Get(ctx context.Context, id string) (*domain.Case, error)
}
