package examiner

import (
	"math"
	"strings"

	"github.com/phrazzld/viva-api/internal/domain"
)

// CandidateAnswers returns the candidate answers given in phase p, in
// transcript order.
func CandidateAnswers(transcript []domain.Message, p domain.Phase) []string {
	var out []string
	for _, m := range transcript {
		if m.Role == domain.RoleCandidate && m.Phase == p {
			out = append(out, m.Text)
		}
	}
	return out
}

func candidateText(transcript []domain.Message, p domain.Phase) string {
	return strings.Join(CandidateAnswers(transcript, p), "\n")
}

// PhaseCoverage matches every phase checklist against the answers given in
// that phase, in phase order.
func PhaseCoverage(c *domain.Case, transcript []domain.Message) []Coverage {
	out := make([]Coverage, 0, len(domain.Phases))
	for _, p := range domain.Phases {
		out = append(out, Match(p, candidateText(transcript, p), c.Checklist(p)))
	}
	return out
}

// RedFlagsRaised returns the distinct red flag labels hit by any answer, in
// case order.
func RedFlagsRaised(c *domain.Case, transcript []domain.Message) []string {
	var all []string
	for _, m := range transcript {
		if m.Role == domain.RoleCandidate {
			all = append(all, m.Text)
		}
	}
	normalized := Normalize(strings.Join(all, "\n"))

	var raised []string
	for _, flag := range c.RedFlags {
		if containsAnyNormalized(normalized, flag.Keywords) {
			raised = append(raised, flag.Label)
		}
	}
	return raised
}

// Score aggregates the checklist coverage of a transcript.
//
// The ratio is the mean coverage of phases that have a checklist. Percent is
// the rounded ratio minus the red flag penalty, clamped to 0..100. Grade maps
// percent onto 0..5 with one decimal.
func Score(c *domain.Case, transcript []domain.Message, params *Params) domain.Score {
	return scoreFrom(PhaseCoverage(c, transcript), len(RedFlagsRaised(c, transcript)), params)
}

func scoreFrom(coverages []Coverage, redFlags int, params *Params) domain.Score {
	if params == nil {
		params = NewDefaultParams()
	}

	score := domain.Score{RedFlags: redFlags}
	var sum float64
	var counted int
	for _, cov := range coverages {
		if cov.Total() == 0 {
			continue
		}
		r := cov.Ratio()
		score.Phases = append(score.Phases, domain.PhaseScore{
			Phase: cov.Phase,
			Hits:  len(cov.Hits),
			Total: cov.Total(),
			Ratio: r,
		})
		sum += r
		counted++
	}
	if counted > 0 {
		score.Ratio = sum / float64(counted)
	}

	percent := int(math.Round(score.Ratio*100)) - params.RedFlagPenalty*redFlags
	score.Percent = clampInt(percent, 0, 100)
	score.Grade = clampFloat(math.Round(float64(score.Percent)/20*10)/10, 0, 5)
	score.Passed = score.Percent >= params.PassMark

	return score
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
