package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of an exam session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusActive, SessionStatusCompleted, SessionStatusAbandoned:
		return true
	}
	return false
}

// MessageRole identifies who wrote a transcript message.
type MessageRole string

const (
	RoleExaminer  MessageRole = "examiner"
	RoleCandidate MessageRole = "candidate"
)

// MessageKind classifies a transcript message.
type MessageKind string

const (
	KindOpening   MessageKind = "opening"
	KindAnswer    MessageKind = "answer"
	KindInterrupt MessageKind = "interrupt"
	KindFollowUp  MessageKind = "follow_up"
	KindEscalate  MessageKind = "escalate"
	KindAdvance   MessageKind = "advance"
	KindClosing   MessageKind = "closing"
)

// Focus is a pending follow-up expectation attached to an examiner message.
// The next candidate answer consumes it.
type Focus struct {
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
	Phase    Phase    `json:"phase"`
}

// FocusOn builds a focus for a checklist item.
func FocusOn(p Phase, item ChecklistItem) *Focus {
	kw := make([]string, len(item.Keywords))
	copy(kw, item.Keywords)
	return &Focus{Label: item.Label, Keywords: kw, Phase: p}
}

// Message is one entry of a session transcript.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	Seq       int         `json:"seq"`
	Role      MessageRole `json:"role"`
	Kind      MessageKind `json:"kind"`
	Phase     Phase       `json:"phase"`
	Text      string      `json:"text"`
	Focus     *Focus      `json:"focus,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessage creates a transcript message.
func NewMessage(sessionID uuid.UUID, seq int, role MessageRole, kind MessageKind, phase Phase, text string) (*Message, error) {
	m := &Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Seq:       seq,
		Role:      role,
		Kind:      kind,
		Phase:     phase,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks message fields.
func (m *Message) Validate() error {
	if m.ID == uuid.Nil || m.SessionID == uuid.Nil {
		return fmt.Errorf("%w: message ids are required", ErrValidation)
	}
	if m.Role != RoleExaminer && m.Role != RoleCandidate {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, m.Role)
	}
	if !m.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, m.Phase)
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("%w: message text is empty", ErrValidation)
	}
	return nil
}

// PhaseScore is the checklist coverage of one phase.
type PhaseScore struct {
	Phase Phase   `json:"phase"`
	Hits  int     `json:"hits"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
}

// Score is the aggregated result of a session.
type Score struct {
	// Percent is clamped to 0..100.
	Percent int `json:"percent"`
	// Grade is clamped to 0..5 with one decimal.
	Grade    float64      `json:"grade"`
	Passed   bool         `json:"passed"`
	Ratio    float64      `json:"ratio"`
	RedFlags int          `json:"red_flags"`
	Phases   []PhaseScore `json:"phases"`
}

// PhaseFeedback lists what went well and what was missed in a phase.
type PhaseFeedback struct {
	Phase     Phase    `json:"phase"`
	Ratio     float64  `json:"ratio"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
}

// Feedback is the debrief produced after a session.
type Feedback struct {
	Summary         string          `json:"summary"`
	Score           Score           `json:"score"`
	Phases          []PhaseFeedback `json:"phases"`
	RedFlags        []string        `json:"red_flags"`
	MissedFollowUps []string        `json:"missed_follow_ups"`
	Notes           []string        `json:"notes"`
	Tips            []string        `json:"tips,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// Session is one oral exam attempt on a case.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	CaseID      string        `json:"case_id"`
	Status      SessionStatus `json:"status"`
	Mode        ExaminerMode  `json:"mode"`
	Strictness  Strictness    `json:"strictness"`
	Turn        int           `json:"turn"`
	Phase       Phase         `json:"phase"`
	Focus       *Focus        `json:"focus,omitempty"`
	Score       *Score        `json:"score,omitempty"`
	Feedback    *Feedback     `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Messages    []Message     `json:"messages,omitempty"`
}

// NewSession creates an active session at turn zero.
func NewSession(userID uuid.UUID, caseID string, mode ExaminerMode, strictness Strictness) (*Session, error) {
	now := time.Now().UTC()
	s := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		CaseID:     caseID,
		Status:     SessionStatusActive,
		Mode:       mode,
		Strictness: strictness,
		Phase:      PhaseIntro,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks session fields.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("%w: session id", ErrInvalidID)
	}
	if s.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id", ErrInvalidID)
	}
	if strings.TrimSpace(s.CaseID) == "" {
		return fmt.Errorf("%w: case id is required", ErrValidation)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSessionStatus, s.Status)
	}
	if !s.Mode.Valid() || !s.Strictness.Valid() {
		return fmt.Errorf("%w: mode %q strictness %q", ErrInvalidSettings, s.Mode, s.Strictness)
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, s.Phase)
	}
	if s.Turn < 0 {
		return fmt.Errorf("%w: negative turn", ErrValidation)
	}
	return nil
}

// IsActive reports whether the session still accepts answers.
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// Complete marks the session finished with the given score.
func (s *Session) Complete(score Score, now time.Time) {
	s.Status = SessionStatusCompleted
	s.Score = &score
	s.Focus = nil
	s.UpdatedAt = now
	s.CompletedAt = &now
}
