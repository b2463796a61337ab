package domain

import (
	"time"

	"github.com/google/uuid"
)

// Streak tracks consecutive practice days for a user.
type Streak struct {
	UserID  uuid.UUID `json:"-"`
	Current int       `json:"current"`
	Longest int       `json:"longest"`
	// LastActiveDay is a calendar date stored at UTC midnight.
	LastActiveDay *time.Time `json:"last_active_day,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CalendarDay returns the calendar date of t in loc, expressed as UTC midnight.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// RecordActivity returns the streak after practicing on day.
// day must be a CalendarDay value. Activity on an earlier day than the last
// recorded one is ignored.
func (s Streak) RecordActivity(day time.Time) Streak {
	next := s
	switch {
	case s.LastActiveDay == nil:
		next.Current = 1
	default:
		gap := daysBetween(*s.LastActiveDay, day)
		switch {
		case gap <= 0:
			return s
		case gap == 1:
			next.Current = s.Current + 1
		default:
			next.Current = 1
		}
	}
	d := day
	next.LastActiveDay = &d
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next
}

// CurrentAsOf returns the streak length as seen on today. A streak whose last
// active day is older than yesterday has lapsed and reads as zero.
func (s Streak) CurrentAsOf(today time.Time) int {
	if s.LastActiveDay == nil {
		return 0
	}
	if daysBetween(*s.LastActiveDay, today) > 1 {
		return 0
	}
	return s.Current
}
