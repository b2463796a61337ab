package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/events"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// txDB returns a sqlmock-backed *sql.DB. Expectations are not ordered so a
// test can run any number of transactions.
func txDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// expectTxs registers n transactions that commit.
func expectTxs(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func builtinCase(t *testing.T, id string) *domain.Case {
	t.Helper()
	lib, err := cases.Load("", quietLogger())
	require.NoError(t, err)
	c, err := lib.Get(context.Background(), id)
	require.NoError(t, err)
	return c
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (e *recordingEmitter) Emit(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

func settingsFor(userID uuid.UUID, mode domain.ExaminerMode) domain.Settings {
	s := domain.DefaultSettings(userID)
	s.ExaminerMode = mode
	return s
}
