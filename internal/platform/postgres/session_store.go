package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/store"
)

const sessionColumns = `id, user_id, case_id, status, mode, strictness, turn, phase,
	focus, score, feedback, created_at, updated_at, completed_at`

// PostgresSessionStore implements store.SessionStore.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a session store. A nil logger uses slog.Default.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx returns a copy of the store bound to tx.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{db: tx, logger: s.logger}
}

// Create inserts a new session row.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	focus, score, feedback, err := sessionJSON(session)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		session.ID, session.UserID, session.CaseID, session.Status, session.Mode, session.Strictness,
		session.Turn, session.Phase, focus, score, feedback,
		session.CreatedAt, session.UpdatedAt, session.CompletedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create session",
			slog.String("session_id", session.ID.String()), slog.Any("error", err))
		return wrap("create", "session", err)
	}
	return nil
}

// GetByID returns a session without its transcript.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, wrap("get", "session", err)
	}
	return session, nil
}

// ListByUser returns a page of a user's sessions, newest first.
func (s *PostgresSessionStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, wrap("list", "session", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, wrap("list", "session", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", "session", err)
	}
	return sessions, nil
}

// Update writes the mutable session state.
func (s *PostgresSessionStore) Update(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	focus, score, feedback, err := sessionJSON(session)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = $2, turn = $3, phase = $4, focus = $5, score = $6, feedback = $7,
		    updated_at = $8, completed_at = $9
		WHERE id = $1`,
		session.ID, session.Status, session.Turn, session.Phase, focus, score, feedback,
		session.UpdatedAt, session.CompletedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update session",
			slog.String("session_id", session.ID.String()), slog.Any("error", err))
		return wrap("update", "session", err)
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// AppendMessage inserts a transcript message. A sequence clash is reported
// as store.ErrDuplicate.
func (s *PostgresSessionStore) AppendMessage(ctx context.Context, msg *domain.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	focus, err := jsonbArg(msg.Focus)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_messages (id, session_id, seq, role, kind, phase, text, focus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		msg.ID, msg.SessionID, msg.Seq, msg.Role, msg.Kind, msg.Phase, msg.Text, focus, msg.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return store.ErrSessionNotFound
		}
		return wrap("append_message", "session", err)
	}
	return nil
}

// Messages returns the transcript ordered by sequence number.
func (s *PostgresSessionStore) Messages(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, role, kind, phase, text, focus, created_at
		FROM session_messages
		WHERE session_id = $1
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, wrap("messages", "session", err)
	}
	defer func() { _ = rows.Close() }()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var (
			m     domain.Message
			focus []byte
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.Role, &m.Kind, &m.Phase, &m.Text, &focus, &m.CreatedAt); err != nil {
			return nil, wrap("messages", "session", err)
		}
		if m.Focus, err = jsonbValue[domain.Focus](focus); err != nil {
			return nil, wrap("messages", "session", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("messages", "session", err)
	}
	return messages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		session                domain.Session
		focus, score, feedback []byte
		completedAt            sql.NullTime
	)
	err := row.Scan(
		&session.ID, &session.UserID, &session.CaseID, &session.Status, &session.Mode, &session.Strictness,
		&session.Turn, &session.Phase, &focus, &score, &feedback,
		&session.CreatedAt, &session.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	if session.Focus, err = jsonbValue[domain.Focus](focus); err != nil {
		return nil, err
	}
	if session.Score, err = jsonbValue[domain.Score](score); err != nil {
		return nil, err
	}
	if session.Feedback, err = jsonbValue[domain.Feedback](feedback); err != nil {
		return nil, err
	}
	return &session, nil
}

func sessionJSON(session *domain.Session) (focus, score, feedback any, err error) {
	if focus, err = jsonbArg(session.Focus); err != nil {
		return nil, nil, nil, err
	}
	if score, err = jsonbArg(session.Score); err != nil {
		return nil, nil, nil, err
	}
	if feedback, err = jsonbArg(session.Feedback); err != nil {
		return nil, nil, nil, err
	}
	return focus, score, feedback, nil
}
