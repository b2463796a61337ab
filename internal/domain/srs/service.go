package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/viva-api/internal/domain"
)

// Common errors
var (
	ErrNilDrill       = errors.New("drill cannot be nil")
	ErrInvalidOutcome = errors.New("invalid drill outcome")
	ErrInvalidDays    = errors.New("postpone days must be at least 1")
)

// Service schedules drills with an SM-2 style algorithm.
type Service interface {
	// CalculateNextReview returns the drill rescheduled after an attempt.
	CalculateNextReview(drill *domain.Drill, outcome domain.DrillOutcome, now time.Time) (*domain.Drill, error)

	// PostponeReview pushes the next due time forward by days.
	PostponeReview(drill *domain.Drill, days int, now time.Time) (*domain.Drill, error)
}

type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scheduler with custom parameters.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{params: params}
}

func (s *defaultService) CalculateNextReview(
	drill *domain.Drill,
	outcome domain.DrillOutcome,
	now time.Time,
) (*domain.Drill, error) {
	if drill == nil {
		return nil, ErrNilDrill
	}
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}
	return calculateNextSchedule(drill, outcome, now, s.params), nil
}

func (s *defaultService) PostponeReview(drill *domain.Drill, days int, now time.Time) (*domain.Drill, error) {
	if drill == nil {
		return nil, ErrNilDrill
	}
	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := *drill
	next.Keywords = append([]string(nil), drill.Keywords...)
	base := drill.NextDueAt
	if base.Before(now) {
		base = now
	}
	next.NextDueAt = base.AddDate(0, 0, days)
	next.UpdatedAt = now
	return &next, nil
}
