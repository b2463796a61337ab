package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// DrillStore is an in-memory store.DrillStore.
type DrillStore struct {
	CreateManyFn func(ctx context.Context, drills []*domain.Drill) error
	UpdateFn     func(ctx context.Context, drill *domain.Drill) error

	mu     sync.Mutex
	drills map[uuid.UUID]*domain.Drill
}

var _ store.DrillStore = (*DrillStore)(nil)

// NewDrillStore creates a store holding drills.
func NewDrillStore(drills ...*domain.Drill) *DrillStore {
	m := &DrillStore{drills: make(map[uuid.UUID]*domain.Drill)}
	for _, d := range drills {
		cp := *d
		m.drills[d.ID] = &cp
	}
	return m
}

// CreateMany implements store.DrillStore.
func (m *DrillStore) CreateMany(ctx context.Context, drills []*domain.Drill) error {
	if m.CreateManyFn != nil {
		return m.CreateManyFn(ctx, drills)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range drills {
		cp := *d
		m.drills[d.ID] = &cp
	}
	return nil
}

// GetByID implements store.DrillStore.
func (m *DrillStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Drill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drills[id]
	if !ok {
		return nil, store.ErrDrillNotFound
	}
	cp := *d
	return &cp, nil
}

// ListByUser implements store.DrillStore.
func (m *DrillStore) ListByUser(ctx context.Context, userID uuid.UUID, dueOnly bool, now time.Time, limit int) ([]*domain.Drill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Drill{}
	for _, d := range m.drills {
		if d.UserID != userID {
			continue
		}
		if dueOnly && (d.Status != domain.DrillStatusPending || d.NextDueAt.After(now)) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextDueAt.Before(out[j].NextDueAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// CountBySession implements store.DrillStore.
func (m *DrillStore) CountBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.drills {
		if d.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// Update implements store.DrillStore.
func (m *DrillStore) Update(ctx context.Context, drill *domain.Drill) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, drill)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drills[drill.ID]; !ok {
		return store.ErrDrillNotFound
	}
	cp := *drill
	m.drills[drill.ID] = &cp
	return nil
}

// WithTx implements store.DrillStore.
func (m *DrillStore) WithTx(*sql.Tx) store.DrillStore { return m }
