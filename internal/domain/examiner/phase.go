package examiner

import "github.com/phrazzld/viva-api/internal/domain"

// DefaultTurnsPerPhase is the number of candidate answers spent in each phase.
const DefaultTurnsPerPhase = 2

func turnsOrDefault(turnsPerPhase int) int {
	if turnsPerPhase <= 0 {
		return DefaultTurnsPerPhase
	}
	return turnsPerPhase
}

// PhaseForTurn maps a zero-based answer counter to its phase. Turns past the
// last phase stay in closing.
func PhaseForTurn(turn, turnsPerPhase int) domain.Phase {
	if turn < 0 {
		return domain.PhaseIntro
	}
	i := turn / turnsOrDefault(turnsPerPhase)
	if i >= len(domain.Phases) {
		i = len(domain.Phases) - 1
	}
	return domain.Phases[i]
}

// TotalTurns is the number of answers after which a session is done.
func TotalTurns(turnsPerPhase int) int {
	return len(domain.Phases) * turnsOrDefault(turnsPerPhase)
}
