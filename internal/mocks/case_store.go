package mocks

import (
	"context"
	"sort"

	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// CaseStore is a fixed store.CaseStore.
type CaseStore struct {
	cases map[string]*domain.Case
}

var _ store.CaseStore = (*CaseStore)(nil)

// NewCaseStore creates a store holding cases.
func NewCaseStore(cases ...*domain.Case) *CaseStore {
	m := &CaseStore{cases: make(map[string]*domain.Case)}
	for _, c := range cases {
		m.cases[c.ID] = c
	}
	return m
}

// List implements store.CaseStore.
func (m *CaseStore) List(ctx context.Context) ([]*domain.Case, error) {
	out := make([]*domain.Case, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements store.CaseStore.
func (m *CaseStore) Get(ctx context.Context, id string) (*domain.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, store.ErrCaseNotFound
	}
	return c, nil
}
