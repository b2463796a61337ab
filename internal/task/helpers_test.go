package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

const fakeTaskType = "fake"

type fakeTask struct {
	id      uuid.UUID
	payload []byte
	exec    func(ctx context.Context) error
}

func newFakeTask(exec func(ctx context.Context) error) *fakeTask {
	id := uuid.New()
	payload, _ := json.Marshal(map[string]string{"id": id.String()})
	if exec == nil {
		exec = func(context.Context) error { return nil }
	}
	return &fakeTask{id: id, payload: payload, exec: exec}
}

func (t *fakeTask) ID() uuid.UUID                     { return t.id }
func (t *fakeTask) Type() string                      { return fakeTaskType }
func (t *fakeTask) Payload() []byte                   { return t.payload }
func (t *fakeTask) Status() TaskStatus                { return TaskStatusPending }
func (t *fakeTask) Execute(ctx context.Context) error { return t.exec(ctx) }

// memStore is an in-memory TaskStore.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	saveErr error
}

func newMemStore(records ...Record) *memStore {
	s := &memStore{records: make(map[uuid.UUID]*Record)}
	for i := range records {
		rec := records[i]
		s.records[rec.ID] = &rec
	}
	return s
}

func (s *memStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	now := time.Now()
	s.records[t.ID()] = &Record{ID: t.ID(), Type: t.Type(), Payload: t.Payload(), Status: t.Status(), CreatedAt: now, UpdatedAt: now}
	return nil
}

func (s *memStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.Status = status
		rec.ErrorMessage = msg
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *memStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(rec.UpdatedAt) < olderThan {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func (s *memStore) GetPendingTasks(context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memStore) WithTx(*sql.Tx) TaskStore { return s }

func (s *memStore) status(id uuid.UUID) (TaskStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return "", ""
	}
	return rec.Status, rec.ErrorMessage
}

type debriefFunc func(ctx context.Context, sessionID uuid.UUID) error

func (f debriefFunc) Debrief(ctx context.Context, sessionID uuid.UUID) error {
	return f(ctx, sessionID)
}
