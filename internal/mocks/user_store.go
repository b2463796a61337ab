package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)

	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty user store.
func NewUserStore(users ...*domain.User) *UserStore {
	m := &UserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

// Create implements store.UserStore.
func (m *UserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// GetByID implements store.UserStore.
func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByEmail implements store.UserStore.
func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// WithTx implements store.UserStore.
func (m *UserStore) WithTx(*sql.Tx) store.UserStore { return m }
