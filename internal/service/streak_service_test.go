package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakService_Get(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	today := domain.CalendarDay(fixedNow, time.UTC)

	tests := []struct {
		name        string
		lastActive  time.Time
		wantCurrent int
		wantToday   bool
	}{
		{"active today", today, 4, true},
		{"active yesterday", today.AddDate(0, 0, -1), 4, false},
		{"lapsed", today.AddDate(0, 0, -2), 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			streaks := mocks.NewStreakStore()
			last := tc.lastActive
			require.NoError(t, streaks.Upsert(ctx, &domain.Streak{
				UserID:        userID,
				Current:       4,
				Longest:       9,
				LastActiveDay: &last,
			}))
			svc := NewStreakService(streaks, mocks.NewSettingsStore(), quietLogger())
			svc.(*streakService).now = func() time.Time { return fixedNow }

			view, err := svc.Get(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantCurrent, view.Current)
			assert.Equal(t, 9, view.Longest)
			assert.Equal(t, tc.wantToday, view.ActiveToday)
		})
	}
}

func TestStreakService_UsesUserTimezone(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	settings := domain.DefaultSettings(userID)
	settings.Timezone = "Pacific/Auckland"

	// 23:30 UTC on 14 March is already 15 March in Auckland.
	now := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	last := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	streaks := mocks.NewStreakStore()
	require.NoError(t, streaks.Upsert(ctx, &domain.Streak{UserID: userID, Current: 2, Longest: 2, LastActiveDay: &last}))
	svc := NewStreakService(streaks, mocks.NewSettingsStore(settings), quietLogger())
	svc.(*streakService).now = func() time.Time { return now }

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Current, "13 March is two days before 15 March in Auckland")
}

func TestStreakService_NoActivity(t *testing.T) {
	svc := NewStreakService(mocks.NewStreakStore(), mocks.NewSettingsStore(), quietLogger())

	view, err := svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, view.Current)
	assert.Zero(t, view.Longest)
	assert.Nil(t, view.LastActiveDay)
	assert.False(t, view.ActiveToday)
}
