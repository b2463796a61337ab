package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// StreakStore is an in-memory store.StreakStore.
type StreakStore struct {
	UpsertFn func(ctx context.Context, streak *domain.Streak) error

	mu      sync.Mutex
	streaks map[uuid.UUID]domain.Streak
	// Upserts counts successful Upsert calls.
	Upserts int
}

var _ store.StreakStore = (*StreakStore)(nil)

// NewStreakStore creates an empty streak store.
func NewStreakStore() *StreakStore {
	return &StreakStore{streaks: make(map[uuid.UUID]domain.Streak)}
}

// Get implements store.StreakStore.
func (m *StreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Streak, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.streaks[userID]
	if !ok {
		s = domain.Streak{UserID: userID}
	}
	return &s, nil
}

// Upsert implements store.StreakStore.
func (m *StreakStore) Upsert(ctx context.Context, streak *domain.Streak) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, streak)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaks[streak.UserID] = *streak
	m.Upserts++
	return nil
}

// WithTx implements store.StreakStore.
func (m *StreakStore) WithTx(*sql.Tx) store.StreakStore { return m }

// SettingsStore is an in-memory store.SettingsStore.
type SettingsStore struct {
	GetFn func(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)

	mu       sync.Mutex
	settings map[uuid.UUID]domain.Settings
}

var _ store.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore creates a store holding settings.
func NewSettingsStore(settings ...domain.Settings) *SettingsStore {
	m := &SettingsStore{settings: make(map[uuid.UUID]domain.Settings)}
	for _, s := range settings {
		m.settings[s.UserID] = s
	}
	return m
}

// Get implements store.SettingsStore.
func (m *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		s = domain.DefaultSettings(userID)
	}
	return &s, nil
}

// Upsert implements store.SettingsStore.
func (m *SettingsStore) Upsert(ctx context.Context, settings *domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.UserID] = *settings
	return nil
}
