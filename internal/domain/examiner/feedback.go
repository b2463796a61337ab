package examiner

import (
	"fmt"
	"sort"
	"time"

	"github.com/phrazzld/viva-api/internal/domain"
)

// WeakItem is a missed checklist item together with where it was missed.
type WeakItem struct {
	Phase domain.Phase
	Ratio float64
	Item  domain.ChecklistItem
}

// BuildFeedback produces the debrief for a transcript.
func BuildFeedback(c *domain.Case, transcript []domain.Message, params *Params, now time.Time) domain.Feedback {
	if params == nil {
		params = NewDefaultParams()
	}
	coverages := PhaseCoverage(c, transcript)
	redFlags := RedFlagsRaised(c, transcript)
	score := scoreFrom(coverages, len(redFlags), params)

	fb := domain.Feedback{
		Score:           score,
		RedFlags:        nonNil(redFlags),
		MissedFollowUps: nonNil(missedFollowUps(transcript)),
		Notes:           nonNil(styleNotes(transcript, params)),
		GeneratedAt:     now,
	}
	for _, cov := range coverages {
		if cov.Total() == 0 {
			continue
		}
		fb.Phases = append(fb.Phases, domain.PhaseFeedback{
			Phase:     cov.Phase,
			Ratio:     cov.Ratio(),
			Strengths: cov.HitLabels(),
			Gaps:      cov.MissLabels(),
		})
	}
	fb.Summary = summaryFor(score, params)
	return fb
}

// WeakestItems returns up to limit missed items, weakest phase first. Ties keep
// phase order, and items keep checklist order.
func WeakestItems(coverages []Coverage, limit int) []WeakItem {
	ordered := make([]Coverage, 0, len(coverages))
	for _, cov := range coverages {
		if len(cov.Misses) > 0 {
			ordered = append(ordered, cov)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Ratio() < ordered[j].Ratio()
	})

	var out []WeakItem
	for _, cov := range ordered {
		for _, item := range cov.Misses {
			if len(out) >= limit {
				return out
			}
			out = append(out, WeakItem{Phase: cov.Phase, Ratio: cov.Ratio(), Item: item})
		}
	}
	return out
}

// missedFollowUps lists focus labels the following answer did not address.
// A focus with no answer after it, such as the last question before an early
// finish, is not counted.
func missedFollowUps(transcript []domain.Message) []string {
	seen := map[string]bool{}
	var missed []string
	for i, m := range transcript {
		if m.Role != domain.RoleExaminer || m.Focus == nil {
			continue
		}
		answer, ok := nextAnswer(transcript[i+1:])
		if !ok || ContainsAny(answer.Text, m.Focus.Keywords) || seen[m.Focus.Label] {
			continue
		}
		seen[m.Focus.Label] = true
		missed = append(missed, m.Focus.Label)
	}
	return missed
}

func nextAnswer(rest []domain.Message) (domain.Message, bool) {
	for _, m := range rest {
		if m.Role == domain.RoleCandidate {
			return m, true
		}
	}
	return domain.Message{}, false
}

func styleNotes(transcript []domain.Message, params *Params) []string {
	var notes []string
	var answers, words, hedges int
	unstructured := false
	for _, m := range transcript {
		if m.Role != domain.RoleCandidate {
			continue
		}
		a := Analyze(m.Text)
		answers++
		words += a.Words
		hedges += a.Hedges
		if (m.Phase == domain.PhaseDDx || m.Phase == domain.PhaseManagement) && !a.Structured {
			unstructured = true
		}
	}
	if answers == 0 {
		return []string{"No answers were given."}
	}
	if words/answers < params.MinAnswerWords {
		notes = append(notes, "Answers were brief. Explain your reasoning out loud.")
	}
	if unstructured {
		notes = append(notes, "Present differentials and plans as ranked, structured lists.")
	}
	if hedges >= params.HedgeLimit {
		notes = append(notes, "Frequent hedging. Commit to a working diagnosis and plan.")
	}
	return notes
}

func summaryFor(score domain.Score, params *Params) string {
	switch {
	case score.Percent >= 85:
		return fmt.Sprintf("Excellent performance (%d%%). Coverage was thorough across the exam.", score.Percent)
	case score.Percent >= params.PassMark:
		return fmt.Sprintf("Pass (%d%%). Solid answers with a few gaps to close.", score.Percent)
	case score.Percent >= 40:
		return fmt.Sprintf("Borderline (%d%%). Several key points were missed.", score.Percent)
	default:
		return fmt.Sprintf("Below the expected standard (%d%%). Review the gaps and practice the drills.", score.Percent)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
