package examiner

import (
	"fmt"
	"strings"

	"github.com/phrazzld/viva-api/internal/domain"
)

// TurnState is what the responder needs to know about a running session.
type TurnState struct {
	// Turn is the number of answers already given.
	Turn int
	// Focus is the expectation attached to the last examiner message.
	Focus *domain.Focus
	// PhaseAnswers are earlier answers given in the current phase.
	PhaseAnswers []string
}

// Reply is the examiner's decision for one candidate answer.
type Reply struct {
	Kind domain.MessageKind `json:"kind"`
	Text string             `json:"text"`
	// Phase is the phase of the examiner's next question.
	Phase domain.Phase `json:"phase"`
	// AnswerPhase is the phase the answer was given in.
	AnswerPhase domain.Phase  `json:"answer_phase"`
	Focus       *domain.Focus `json:"focus,omitempty"`
	Done        bool          `json:"done"`

	// Coverage is the cumulative coverage of the answer phase.
	Coverage Coverage `json:"coverage"`
	Analysis Analysis `json:"analysis"`

	ConsumedFocus *domain.Focus `json:"consumed_focus,omitempty"`
	FocusResolved bool          `json:"focus_resolved"`
	RedFlags      []string      `json:"red_flags,omitempty"`
}

// Examiner is the deterministic rule-based examiner.
type Examiner struct {
	params *Params
}

// New creates an examiner. A nil params uses the defaults.
func New(params *Params) *Examiner {
	if params == nil {
		params = NewDefaultParams()
	}
	return &Examiner{params: params}
}

// Params returns the examiner's parameters.
func (e *Examiner) Params() *Params {
	return e.params
}

// WithStrictness returns an examiner using the given strictness preset.
func (e *Examiner) WithStrictness(s domain.Strictness) *Examiner {
	return &Examiner{params: e.params.WithStrictness(s)}
}

// Opening returns the first examiner message of a session.
func (e *Examiner) Opening(c *domain.Case) string {
	return joinLines(c.Vignette, c.Script(domain.PhaseIntro).Question)
}

// Closing returns the final examiner remark for c.
func Closing(c *domain.Case) string {
	if strings.TrimSpace(c.Closing) != "" {
		return c.Closing
	}
	return defaultClosing
}

// Respond evaluates one answer and returns the examiner's next message.
func (e *Examiner) Respond(c *domain.Case, state TurnState, answer string) (Reply, error) {
	if strings.TrimSpace(answer) == "" {
		return Reply{}, domain.ErrEmptyAnswer
	}
	p := e.params
	total := TotalTurns(p.TurnsPerPhase)
	if state.Turn >= total {
		return Reply{}, domain.ErrSessionClosed
	}

	phase := PhaseForTurn(state.Turn, p.TurnsPerPhase)
	items := c.Checklist(phase)
	normalized := Normalize(answer)
	variant := state.Turn

	phaseText := strings.Join(append(append([]string(nil), state.PhaseAnswers...), answer), "\n")
	reply := Reply{
		AnswerPhase: phase,
		Analysis:    Analyze(answer),
		Coverage:    Match(phase, phaseText, items),
	}
	answerHits := len(matchNormalized(phase, normalized, items).Hits)

	if state.Focus != nil {
		reply.ConsumedFocus = state.Focus
		reply.FocusResolved = containsAnyNormalized(normalized, state.Focus.Keywords)
	}
	for _, flag := range c.RedFlags {
		if containsAnyNormalized(normalized, flag.Keywords) {
			reply.RedFlags = append(reply.RedFlags, flag.Label)
		}
	}

	var interruption string
	switch {
	case len(reply.RedFlags) > 0:
		interruption = fmt.Sprintf(pick(redFlagLines, variant), strings.Join(reply.RedFlags, ", "))
	case reply.Analysis.Words > p.InterruptWordLimit && answerHits == 0:
		interruption = pick(rambleLines, variant)
	}

	nextTurn := state.Turn + 1
	if nextTurn >= total {
		reply.Kind = domain.KindClosing
		if interruption != "" {
			reply.Kind = domain.KindInterrupt
		}
		reply.Phase = domain.PhaseClosing
		reply.Done = true
		reply.Text = joinLines(interruption, Closing(c))
		return reply, nil
	}

	if next := PhaseForTurn(nextTurn, p.TurnsPerPhase); next != phase {
		reply.Kind = domain.KindAdvance
		if interruption != "" {
			reply.Kind = domain.KindInterrupt
		}
		reply.Phase = next
		reply.Text = joinLines(interruption, pick(acknowledgeLines, variant), c.Script(next).Question)
		return reply, nil
	}

	reply.Phase = phase
	miss, hasMiss := reply.Coverage.FirstMiss()
	if hasMiss {
		reply.Focus = domain.FocusOn(phase, miss)
	}

	if interruption != "" {
		reply.Kind = domain.KindInterrupt
		reply.Text = joinLines(interruption, "Back to the question.", c.Script(phase).Question)
		return reply, nil
	}

	reply.Kind = domain.KindFollowUp
	ratio := reply.Coverage.Ratio()
	switch {
	case reply.Analysis.Words < p.MinAnswerWords:
		reply.Text = pick(elaborateLines, variant)
	case (phase == domain.PhaseDDx || phase == domain.PhaseManagement) && !reply.Analysis.Structured:
		reply.Text = pick(structureLines, variant)
	case reply.Analysis.Hedges >= p.HedgeLimit:
		reply.Text = pick(commitLines, variant)
	case len(items) > 0 && ratio >= p.EscalateThreshold:
		reply.Kind = domain.KindEscalate
		reply.Focus = nil
		question := c.Script(phase).Escalation
		if strings.TrimSpace(question) == "" {
			question = pick(genericEscalations, variant)
		}
		reply.Text = joinLines(pick(escalateLines, variant), question)
	case hasMiss && ratio < p.FollowUpThreshold:
		reply.Text = missPrompt(miss, variant)
	default:
		reply.Text = pick(probeLines, variant)
	}

	return reply, nil
}

// Hint nudges a stuck candidate towards the pending focus or, without one,
// the first item the current phase has not covered yet. It returns "" once
// the session is done.
func (e *Examiner) Hint(c *domain.Case, state TurnState) string {
	turnsPerPhase := e.params.TurnsPerPhase
	if state.Turn >= TotalTurns(turnsPerPhase) {
		return ""
	}
	phase := PhaseForTurn(state.Turn, turnsPerPhase)
	items := c.Checklist(phase)

	if state.Focus != nil && state.Focus.Phase == phase {
		for _, item := range items {
			if item.Label == state.Focus.Label {
				return hintFor(item, state.Turn)
			}
		}
	}
	cov := Match(phase, strings.Join(state.PhaseAnswers, "\n"), items)
	if miss, ok := cov.FirstMiss(); ok {
		return hintFor(miss, state.Turn)
	}
	return genericHint
}

func hintFor(item domain.ChecklistItem, variant int) string {
	if strings.TrimSpace(item.Prompt) != "" {
		return item.Prompt
	}
	return fmt.Sprintf(pick(hintLines, variant), strings.ToLower(item.Label))
}
