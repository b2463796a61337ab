package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DrillStatus represents the lifecycle of a drill.
type DrillStatus string

const (
	DrillStatusPending   DrillStatus = "pending"
	DrillStatusCompleted DrillStatus = "completed"
)

// DrillOutcome grades a single drill attempt.
type DrillOutcome string

const (
	DrillOutcomeAgain DrillOutcome = "again"
	DrillOutcomeHard  DrillOutcome = "hard"
	DrillOutcomeGood  DrillOutcome = "good"
	DrillOutcomeEasy  DrillOutcome = "easy"
)

// Valid reports whether o is a known outcome.
func (o DrillOutcome) Valid() bool {
	switch o {
	case DrillOutcomeAgain, DrillOutcomeHard, DrillOutcomeGood, DrillOutcomeEasy:
		return true
	}
	return false
}

// DrillCompletionStreak is the number of consecutive correct attempts after
// which a drill is considered mastered.
const DrillCompletionStreak = 2

// Drill is a short practice exercise derived from a missed checklist item.
type Drill struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	SessionID uuid.UUID   `json:"session_id"`
	CaseID    string      `json:"case_id"`
	Phase     Phase       `json:"phase"`
	Label     string      `json:"label"`
	Keywords  []string    `json:"-"`
	Prompt    string      `json:"prompt"`
	Status    DrillStatus `json:"status"`

	// Scheduling state.
	Interval           int        `json:"interval"`
	EaseFactor         float64    `json:"ease_factor"`
	ConsecutiveCorrect int        `json:"consecutive_correct"`
	AttemptCount       int        `json:"attempt_count"`
	LastAttemptAt      *time.Time `json:"last_attempt_at,omitempty"`
	NextDueAt          time.Time  `json:"next_due_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDrill creates a pending drill that is due immediately.
func NewDrill(userID, sessionID uuid.UUID, caseID string, phase Phase, item ChecklistItem, prompt string, now time.Time) (*Drill, error) {
	kw := make([]string, len(item.Keywords))
	copy(kw, item.Keywords)
	d := &Drill{
		ID:         uuid.New(),
		UserID:     userID,
		SessionID:  sessionID,
		CaseID:     caseID,
		Phase:      phase,
		Label:      item.Label,
		Keywords:   kw,
		Prompt:     prompt,
		Status:     DrillStatusPending,
		EaseFactor: 2.5,
		NextDueAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks drill fields.
func (d *Drill) Validate() error {
	if d.ID == uuid.Nil || d.UserID == uuid.Nil || d.SessionID == uuid.Nil {
		return fmt.Errorf("%w: drill ids are required", ErrInvalidID)
	}
	if strings.TrimSpace(d.CaseID) == "" || strings.TrimSpace(d.Label) == "" {
		return fmt.Errorf("%w: drill needs a case and label", ErrValidation)
	}
	if !d.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, d.Phase)
	}
	if strings.TrimSpace(d.Prompt) == "" {
		return fmt.Errorf("%w: drill prompt is empty", ErrValidation)
	}
	if d.Status != DrillStatusPending && d.Status != DrillStatusCompleted {
		return fmt.Errorf("%w: drill status %q", ErrValidation, d.Status)
	}
	if d.EaseFactor <= 0 {
		return fmt.Errorf("%w: ease factor must be positive", ErrValidation)
	}
	return nil
}

// IsDue reports whether the drill should be practiced at now.
func (d *Drill) IsDue(now time.Time) bool {
	return d.Status == DrillStatusPending && !d.NextDueAt.After(now)
}
