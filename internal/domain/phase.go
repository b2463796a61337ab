package domain

import (
	"fmt"
	"strings"
)

// Phase is one stage of the oral exam. Phases run in a fixed order.
type Phase string

const (
	PhaseIntro       Phase = "intro"
	PhaseDDx         Phase = "ddx"
	PhaseDiagnostics Phase = "diagnostics"
	PhaseManagement  Phase = "management"
	PhaseClosing     Phase = "closing"
)

// Phases lists every phase in exam order.
var Phases = []Phase{
	PhaseIntro,
	PhaseDDx,
	PhaseDiagnostics,
	PhaseManagement,
	PhaseClosing,
}

var phaseTitles = map[Phase]string{
	PhaseIntro:       "History and presentation",
	PhaseDDx:         "Differential diagnosis",
	PhaseDiagnostics: "Diagnostic work-up",
	PhaseManagement:  "Management",
	PhaseClosing:     "Closing",
}

// ParsePhase converts external input into a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
	return p, nil
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// Index returns the position of p in Phases, or -1.
func (p Phase) Index() int {
	for i, candidate := range Phases {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the phase after p. The closing phase is terminal.
func (p Phase) Next() Phase {
	i := p.Index()
	if i < 0 || i >= len(Phases)-1 {
		return PhaseClosing
	}
	return Phases[i+1]
}

// Title returns a human readable phase name.
func (p Phase) Title() string {
	if t, ok := phaseTitles[p]; ok {
		return t
	}
	return string(p)
}
