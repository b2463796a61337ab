package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDrill(t *testing.T, now time.Time) *domain.Drill {
	t.Helper()
	item := domain.ChecklistItem{Label: "Aspirin", Keywords: []string{"aspirin"}}
	d, err := domain.NewDrill(uuid.New(), uuid.New(), "case-1", domain.PhaseManagement, item, "First drug?", now)
	require.NoError(t, err)
	return d
}

func TestCalculateNextReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()
	drill := newDrill(t, now)

	next, err := svc.CalculateNextReview(drill, domain.DrillOutcomeEasy, now)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Interval)
	assert.Equal(t, 1, next.ConsecutiveCorrect)

	_, err = svc.CalculateNextReview(nil, domain.DrillOutcomeGood, now)
	assert.ErrorIs(t, err, ErrNilDrill)

	_, err = svc.CalculateNextReview(drill, "perfect", now)
	assert.ErrorIs(t, err, ErrInvalidOutcome)
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()
	svc := NewServiceWithParams(nil)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	overdue := newDrill(t, now.AddDate(0, 0, -3))
	next, err := svc.PostponeReview(overdue, 2, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 2), next.NextDueAt, "overdue drills postpone from now")

	future := newDrill(t, now)
	future.NextDueAt = now.AddDate(0, 0, 5)
	next, err = svc.PostponeReview(future, 1, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 6), next.NextDueAt)

	_, err = svc.PostponeReview(future, 0, now)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = svc.PostponeReview(nil, 1, now)
	assert.ErrorIs(t, err, ErrNilDrill)
}
