package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/phrazzld/viva-api/internal/events"
	"github.com/phrazzld/viva-api/internal/store"
	"github.com/phrazzld/viva-api/internal/task"
)

// SessionService runs oral exam sessions.
type SessionService interface {
	// Start opens a session for caseID using the user's current settings and
	// returns it together with the opening examiner message.
	Start(ctx context.Context, userID uuid.UUID, caseID string) (*domain.Session, error)

	// Answer records one candidate answer and the examiner's reply. When the
	// last turn is answered the session is completed and scored.
	Answer(ctx context.Context, userID, sessionID uuid.UUID, text string) (*AnswerResult, error)

	// Get returns a session with its transcript.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)

	// List returns the user's sessions, newest first, without transcripts.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error)

	// Finish completes an active session early and scores what was answered.
	// Finishing a completed session returns it unchanged.
	Finish(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error)

	// Feedback returns the debrief of a finished session, or
	// ErrFeedbackPending while it is being produced. Once the background
	// debrief is overdue it is built inline instead.
	Feedback(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Feedback, error)
}

// AnswerResult is the outcome of one answered turn.
type AnswerResult struct {
	Session  *domain.Session `json:"session"`
	Answer   domain.Message  `json:"answer"`
	Reply    domain.Message  `json:"reply"`
	Done     bool            `json:"done"`
	RedFlags []string        `json:"red_flags,omitempty"`
}

// SessionDependencies are the collaborators of SessionService.
type SessionDependencies struct {
	DB       *sql.DB
	Cases    store.CaseStore
	Sessions store.SessionStore
	Settings store.SettingsStore
	Emitter  events.Emitter
	Examiner *examiner.Examiner
	// Voice is optional. Without it AI mode sessions use the rule text.
	Voice ExaminerVoice
	// Debriefer is optional. With it, Feedback builds the debrief itself
	// once DebriefGrace has passed since the session completed.
	Debriefer    task.Debriefer
	DebriefGrace time.Duration
	Logger       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type sessionService struct {
	db       *sql.DB
	cases    store.CaseStore
	sessions store.SessionStore
	settings store.SettingsStore
	emitter  events.Emitter
	examiner *examiner.Examiner
	voice    ExaminerVoice
	logger   *slog.Logger
	now      func() time.Time

	debriefer    task.Debriefer
	debriefGrace time.Duration
}

var _ SessionService = (*sessionService)(nil)

// NewSessionService validates deps and creates the service.
func NewSessionService(deps SessionDependencies) (SessionService, error) {
	switch {
	case deps.DB == nil:
		return nil, &ServiceError{Service: "session", Operation: "create_service", Message: "db cannot be nil"}
	case deps.Cases == nil:
		return nil, &ServiceError{Service: "session", Operation: "create_service", Message: "case store cannot be nil"}
	case deps.Sessions == nil:
		return nil, &ServiceError{Service: "session", Operation: "create_service", Message: "session store cannot be nil"}
	case deps.Settings == nil:
		return nil, &ServiceError{Service: "session", Operation: "create_service", Message: "settings store cannot be nil"}
	case deps.Emitter == nil:
		return nil, &ServiceError{Service: "session", Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if deps.Examiner == nil {
		deps.Examiner = examiner.New(nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DebriefGrace <= 0 {
		deps.DebriefGrace = time.Minute
	}
	return &sessionService{
		db:       deps.DB,
		cases:    deps.Cases,
		sessions: deps.Sessions,
		settings: deps.Settings,
		emitter:  deps.Emitter,
		examiner: deps.Examiner,
		voice:    deps.Voice,
		logger:   deps.Logger.With("component", "session_service"),
		now:      deps.Now,

		debriefer:    deps.Debriefer,
		debriefGrace: deps.DebriefGrace,
	}, nil
}

func (s *sessionService) Start(ctx context.Context, userID uuid.UUID, caseID string) (*domain.Session, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, newError("session", "start", "failed to load case", err)
	}
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, newError("session", "start", "failed to load settings", err)
	}

	session, err := domain.NewSession(userID, c.ID, settings.ExaminerMode, settings.Strictness)
	if err != nil {
		return nil, newError("session", "start", "invalid session", err)
	}
	now := s.now().UTC()
	session.CreatedAt, session.UpdatedAt = now, now

	opening, err := domain.NewMessage(session.ID, 0, domain.RoleExaminer, domain.KindOpening, domain.PhaseIntro,
		s.examiner.Opening(c))
	if err != nil {
		return nil, newError("session", "start", "invalid opening message", err)
	}
	opening.CreatedAt = now

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txSessions := s.sessions.WithTx(tx)
		if err := txSessions.Create(ctx, session); err != nil {
			return err
		}
		return txSessions.AppendMessage(ctx, opening)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to start session",
			"error", err,
			"user_id", userID,
			"case_id", caseID)
		return nil, newError("session", "start", "failed to save session", err)
	}

	s.logger.InfoContext(ctx, "session started",
		"session_id", session.ID,
		"user_id", userID,
		"case_id", c.ID,
		"mode", session.Mode,
		"strictness", session.Strictness)

	session.Messages = []domain.Message{*opening}
	return session, nil
}

func (s *sessionService) Answer(ctx context.Context, userID, sessionID uuid.UUID, text string) (*AnswerResult, error) {
	session, err := s.owned(ctx, "answer", userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, domain.ErrSessionClosed
	}
	c, err := s.cases.Get(ctx, session.CaseID)
	if err != nil {
		return nil, newError("session", "answer", "failed to load case", err)
	}
	transcript, err := s.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, newError("session", "answer", "failed to load transcript", err)
	}

	ex := s.examiner.WithStrictness(session.Strictness)
	turnsPerPhase := ex.Params().TurnsPerPhase
	phase := examiner.PhaseForTurn(session.Turn, turnsPerPhase)
	reply, err := ex.Respond(c, examiner.TurnState{
		Turn:         session.Turn,
		Focus:        session.Focus,
		PhaseAnswers: examiner.CandidateAnswers(transcript, phase),
	}, text)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	seq := nextSeq(transcript)
	answer, err := domain.NewMessage(sessionID, seq, domain.RoleCandidate, domain.KindAnswer, reply.AnswerPhase, text)
	if err != nil {
		return nil, newError("session", "answer", "invalid answer message", err)
	}
	answer.CreatedAt = now

	withAnswer := append(transcript[:len(transcript):len(transcript)], *answer)
	replyText := reply.Text
	if session.Mode == domain.ModeAI && s.voice != nil {
		replyText = s.phrase(ctx, c, withAnswer, reply)
	}
	examinerMsg, err := domain.NewMessage(sessionID, seq+1, domain.RoleExaminer, reply.Kind, reply.Phase, replyText)
	if err != nil {
		return nil, newError("session", "answer", "invalid examiner message", err)
	}
	examinerMsg.Focus = reply.Focus
	examinerMsg.CreatedAt = now

	full := append(withAnswer, *examinerMsg)
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txSessions := s.sessions.WithTx(tx)

		current, err := txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if current.Turn != session.Turn || !current.IsActive() {
			return ErrConflict
		}
		if err := txSessions.AppendMessage(ctx, answer); err != nil {
			return err
		}
		if err := txSessions.AppendMessage(ctx, examinerMsg); err != nil {
			return err
		}

		current.Turn++
		current.Phase = reply.Phase
		current.Focus = reply.Focus
		current.UpdatedAt = now
		if reply.Done {
			current.Complete(examiner.Score(c, full, ex.Params()), now)
		}
		if err := txSessions.Update(ctx, current); err != nil {
			return err
		}
		session = current
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = ErrConflict
		}
		s.logger.ErrorContext(ctx, "failed to record answer",
			"error", err,
			"session_id", sessionID,
			"turn", session.Turn)
		return nil, newError("session", "answer", "failed to record answer", err)
	}

	s.logger.InfoContext(ctx, "answer recorded",
		"session_id", sessionID,
		"turn", session.Turn,
		"reply_kind", reply.Kind,
		"phase", reply.Phase,
		"red_flags", len(reply.RedFlags))

	if reply.Done {
		s.emitFinished(ctx, session)
	}

	return &AnswerResult{
		Session:  session,
		Answer:   *answer,
		Reply:    *examinerMsg,
		Done:     reply.Done,
		RedFlags: reply.RedFlags,
	}, nil
}

func (s *sessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.owned(ctx, "get", userID, sessionID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, newError("session", "get", "failed to load transcript", err)
	}
	session.Messages = msgs
	return session, nil
}

func (s *sessionService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list sessions", "error", err, "user_id", userID)
		return nil, newError("session", "list", "failed to list sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) Finish(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.owned(ctx, "finish", userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return session, nil
	}
	c, err := s.cases.Get(ctx, session.CaseID)
	if err != nil {
		return nil, newError("session", "finish", "failed to load case", err)
	}
	params := s.examiner.WithStrictness(session.Strictness).Params()
	now := s.now().UTC()
	finished := false

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txSessions := s.sessions.WithTx(tx)

		current, err := txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !current.IsActive() {
			session = current
			return nil
		}
		transcript, err := txSessions.Messages(ctx, sessionID)
		if err != nil {
			return err
		}
		closing, err := domain.NewMessage(sessionID, nextSeq(transcript), domain.RoleExaminer,
			domain.KindClosing, domain.PhaseClosing, examiner.Closing(c))
		if err != nil {
			return err
		}
		closing.CreatedAt = now
		if err := txSessions.AppendMessage(ctx, closing); err != nil {
			return err
		}

		current.Phase = domain.PhaseClosing
		current.Complete(examiner.Score(c, transcript, params), now)
		if err := txSessions.Update(ctx, current); err != nil {
			return err
		}
		session = current
		finished = true
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = ErrConflict
		}
		s.logger.ErrorContext(ctx, "failed to finish session", "error", err, "session_id", sessionID)
		return nil, newError("session", "finish", "failed to finish session", err)
	}

	if finished {
		s.logger.InfoContext(ctx, "session finished early",
			"session_id", sessionID,
			"turn", session.Turn,
			"percent", session.Score.Percent)
		s.emitFinished(ctx, session)
	}
	return session, nil
}

func (s *sessionService) Feedback(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Feedback, error) {
	session, err := s.owned(ctx, "feedback", userID, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case session.Feedback != nil:
		return session.Feedback, nil
	case session.IsActive():
		return nil, ErrSessionActive
	case !s.debriefOverdue(session):
		return nil, ErrFeedbackPending
	}

	s.logger.WarnContext(ctx, "debrief overdue, building it inline",
		"session_id", sessionID,
		"completed_at", *session.CompletedAt)
	if err := s.debriefer.Debrief(ctx, sessionID); err != nil {
		return nil, newError("session", "feedback", "failed to build feedback", err)
	}
	session, err = s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, newError("session", "feedback", "failed to reload session", err)
	}
	if session.Feedback == nil {
		return nil, ErrFeedbackPending
	}
	return session.Feedback, nil
}

func (s *sessionService) debriefOverdue(session *domain.Session) bool {
	if s.debriefer == nil || session.CompletedAt == nil {
		return false
	}
	return s.now().Sub(*session.CompletedAt) >= s.debriefGrace
}

// owned loads a session and checks that userID owns it.
func (s *sessionService) owned(ctx context.Context, op string, userID, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			s.logger.ErrorContext(ctx, "failed to load session", "error", err, "session_id", sessionID)
		}
		return nil, newError("session", op, "failed to load session", err)
	}
	if session.UserID != userID {
		s.logger.WarnContext(ctx, "session accessed by another user",
			"session_id", sessionID,
			"owner_id", session.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return session, nil
}

// phrase asks the voice for the examiner line and falls back to the rule
// text on any failure.
func (s *sessionService) phrase(ctx context.Context, c *domain.Case, transcript []domain.Message, reply examiner.Reply) string {
	text, err := s.voice.Phrase(ctx, c, transcript, reply)
	if err != nil {
		s.logger.WarnContext(ctx, "examiner voice failed, using rule text",
			"error", err,
			"case_id", c.ID,
			"reply_kind", reply.Kind)
		return reply.Text
	}
	return text
}

// emitFinished publishes the session.finished event. The session is already
// committed at this point, so a failed emit is only logged.
func (s *sessionService) emitFinished(ctx context.Context, session *domain.Session) {
	event, err := events.New(events.TypeSessionFinished, events.SessionFinished{
		SessionID: session.ID,
		UserID:    session.UserID,
		CaseID:    session.CaseID,
	})
	if err == nil {
		err = s.emitter.Emit(ctx, event)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit session finished event",
			"error", err,
			"session_id", session.ID)
	}
}

func nextSeq(transcript []domain.Message) int {
	if len(transcript) == 0 {
		return 0
	}
	return transcript[len(transcript)-1].Seq + 1
}
