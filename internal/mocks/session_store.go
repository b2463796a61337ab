package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

// SessionStore is an in-memory store.SessionStore.
type SessionStore struct {
	CreateFn        func(ctx context.Context, session *domain.Session) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateFn        func(ctx context.Context, session *domain.Session) error
	AppendMessageFn func(ctx context.Context, msg *domain.Message) error

	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
	messages map[uuid.UUID][]domain.Message
	// Updates counts successful Update calls.
	Updates int
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*domain.Session),
		messages: make(map[uuid.UUID][]domain.Message),
	}
}

func copySession(s *domain.Session) *domain.Session {
	cp := *s
	cp.Messages = nil
	if s.Score != nil {
		score := *s.Score
		cp.Score = &score
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		cp.Feedback = &fb
	}
	return &cp
}

// Create implements store.SessionStore.
func (m *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; ok {
		return store.ErrDuplicate
	}
	m.sessions[session.ID] = copySession(session)
	return nil
}

// GetByID implements store.SessionStore.
func (m *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return copySession(s), nil
}

// ListByUser implements store.SessionStore.
func (m *SessionStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*domain.Session{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Update implements store.SessionStore.
func (m *SessionStore) Update(ctx context.Context, session *domain.Session) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return store.ErrSessionNotFound
	}
	m.sessions[session.ID] = copySession(session)
	m.Updates++
	return nil
}

// AppendMessage implements store.SessionStore. A repeated sequence number
// fails with store.ErrDuplicate.
func (m *SessionStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if m.AppendMessageFn != nil {
		return m.AppendMessageFn(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[msg.SessionID]; !ok {
		return store.ErrSessionNotFound
	}
	for _, existing := range m.messages[msg.SessionID] {
		if existing.Seq == msg.Seq {
			return store.ErrDuplicate
		}
	}
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

// Messages implements store.SessionStore.
func (m *SessionStore) Messages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append([]domain.Message{}, m.messages[sessionID]...)
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })
	return msgs, nil
}

// Put stores a session directly, bypassing CreateFn.
func (m *SessionStore) Put(session *domain.Session, msgs ...domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = copySession(session)
	m.messages[session.ID] = append(m.messages[session.ID], msgs...)
}

// WithTx implements store.SessionStore.
func (m *SessionStore) WithTx(*sql.Tx) store.SessionStore { return m }
