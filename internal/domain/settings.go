package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExaminerMode selects who writes examiner messages.
type ExaminerMode string

const (
	ModeRules ExaminerMode = "rules"
	ModeAI    ExaminerMode = "ai"
)

// Valid reports whether m is a known mode.
func (m ExaminerMode) Valid() bool {
	return m == ModeRules || m == ModeAI
}

// Strictness selects a preset of examiner thresholds.
type Strictness string

const (
	StrictnessLenient  Strictness = "lenient"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// Valid reports whether s is a known strictness.
func (s Strictness) Valid() bool {
	switch s {
	case StrictnessLenient, StrictnessStandard, StrictnessStrict:
		return true
	}
	return false
}

// Settings are per-user preferences.
type Settings struct {
	UserID         uuid.UUID    `json:"-"`
	ExaminerMode   ExaminerMode `json:"examiner_mode"`
	Strictness     Strictness   `json:"strictness"`
	Timezone       string       `json:"timezone"`
	DailyDrillGoal int          `json:"daily_drill_goal"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// DefaultSettings returns the settings used before a user saves any.
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		UserID:         userID,
		ExaminerMode:   ModeRules,
		Strictness:     StrictnessStandard,
		Timezone:       "UTC",
		DailyDrillGoal: 5,
	}
}

// Validate checks settings values.
func (s *Settings) Validate() error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("%w: user id", ErrInvalidID)
	}
	if !s.ExaminerMode.Valid() {
		return fmt.Errorf("%w: examiner mode %q", ErrInvalidSettings, s.ExaminerMode)
	}
	if !s.Strictness.Valid() {
		return fmt.Errorf("%w: strictness %q", ErrInvalidSettings, s.Strictness)
	}
	if !validTimezone(s.Timezone) {
		return fmt.Errorf("%w: timezone %q", ErrInvalidSettings, s.Timezone)
	}
	if s.DailyDrillGoal < 1 || s.DailyDrillGoal > 50 {
		return fmt.Errorf("%w: daily drill goal must be 1..50", ErrInvalidSettings)
	}
	return nil
}

// Location returns the user's time zone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if !validTimezone(s.Timezone) {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validTimezone accepts IANA names only. "Local" would resolve to the
// server's zone, and "" to UTC, so both are rejected.
func validTimezone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
