package examiner

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpening(t *testing.T) {
	e := New(nil)
	got := e.Opening(chestPainCase())
	assert.Equal(t, "A 58-year-old man presents with chest pain. Please take a focused history.", got)
}

func TestRespond_Errors(t *testing.T) {
	e := New(nil)
	c := chestPainCase()

	_, err := e.Respond(c, TurnState{}, "   \n")
	assert.ErrorIs(t, err, domain.ErrEmptyAnswer)

	_, err = e.Respond(c, TurnState{Turn: TotalTurns(2)}, "late answer")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestRespond_Decisions(t *testing.T) {
	c := chestPainCase()
	e := New(nil)
	riskFocus := domain.FocusOn(domain.PhaseIntro, c.Checklist(domain.PhaseIntro)[2])

	tests := []struct {
		name         string
		state        TurnState
		answer       string
		kind         domain.MessageKind
		phase        domain.Phase
		textContains string
		focusLabel   string
		done         bool
	}{
		{
			name:         "partial coverage probes and focuses the first miss",
			state:        TurnState{Turn: 0},
			answer:       "Pain started two hours ago at rest and radiates to the jaw",
			kind:         domain.KindFollowUp,
			phase:        domain.PhaseIntro,
			textContains: "Anything else",
			focusLabel:   "Risk factors",
		},
		{
			name:         "low coverage asks about the missed item",
			state:        TurnState{Turn: 0},
			answer:       "The pain started two hours ago while he was resting quietly",
			kind:         domain.KindFollowUp,
			phase:        domain.PhaseIntro,
			textContains: "What about radiation?",
			focusLabel:   "Radiation",
		},
		{
			name:         "phase boundary advances to the next question",
			state:        TurnState{Turn: 1, Focus: riskFocus, PhaseAnswers: []string{"It started at rest"}},
			answer:       "He smokes",
			kind:         domain.KindAdvance,
			phase:        domain.PhaseDDx,
			textContains: "What is your differential diagnosis?",
		},
		{
			name:         "short answer asks to elaborate",
			state:        TurnState{Turn: 2},
			answer:       "ACS",
			kind:         domain.KindFollowUp,
			phase:        domain.PhaseDDx,
			textContains: "Can you say more?",
			focusLabel:   "Aortic dissection",
		},
		{
			name:         "unstructured differential asks for structure",
			state:        TurnState{Turn: 2},
			answer:       "I would consider an acute coronary syndrome as the main thing here",
			kind:         domain.KindFollowUp,
			phase:        domain.PhaseDDx,
			textContains: "structure your answer",
			focusLabel:   "Aortic dissection",
		},
		{
			name:         "hedging asks to commit",
			state:        TurnState{Turn: 4},
			answer:       "I think maybe an ECG would probably help here",
			kind:         domain.KindFollowUp,
			phase:        domain.PhaseDiagnostics,
			textContains: "Commit to an answer",
			focusLabel:   "Troponin",
		},
		{
			name:         "full structured coverage escalates",
			state:        TurnState{Turn: 2},
			answer:       "1. ACS\n2. Aortic dissection\n3. Pulmonary embolism",
			kind:         domain.KindEscalate,
			phase:        domain.PhaseDDx,
			textContains: "distinguish aortic dissection",
		},
		{
			name:         "red flag interrupts",
			state:        TurnState{Turn: 6},
			answer:       "I would give thrombolysis immediately, then aspirin",
			kind:         domain.KindInterrupt,
			phase:        domain.PhaseManagement,
			textContains: "How do you manage him?",
			focusLabel:   "Cath lab",
		},
		{
			name:         "rambling without content interrupts",
			state:        TurnState{Turn: 4},
			answer:       strings.Repeat("the patient is unwell ", 60),
			kind:         domain.KindInterrupt,
			phase:        domain.PhaseDiagnostics,
			textContains: "Back to the question.",
			focusLabel:   "ECG",
		},
		{
			name:         "last turn closes the session",
			state:        TurnState{Turn: 9},
			answer:       "In short, likely a myocardial infarction",
			kind:         domain.KindClosing,
			phase:        domain.PhaseClosing,
			textContains: "Thank you, we are done.",
			done:         true,
		},
		{
			name:         "red flag on last turn interrupts",
			state:        TurnState{Turn: 9},
			answer:       "In short I would give thrombolysis right away",
			kind:         domain.KindInterrupt,
			phase:        domain.PhaseClosing,
			textContains: "Thank you, we are done.",
			done:         true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := e.Respond(c, tc.state, tc.answer)
			require.NoError(t, err)

			assert.Equal(t, tc.kind, reply.Kind)
			assert.Equal(t, tc.phase, reply.Phase)
			assert.Contains(t, reply.Text, tc.textContains)
			assert.Equal(t, tc.done, reply.Done)
			if tc.focusLabel == "" {
				assert.Nil(t, reply.Focus)
			} else {
				require.NotNil(t, reply.Focus)
				assert.Equal(t, tc.focusLabel, reply.Focus.Label)
				assert.Equal(t, tc.phase, reply.Focus.Phase)
			}
		})
	}
}

func TestRespond_ConsumesFocus(t *testing.T) {
	c := chestPainCase()
	e := New(nil)
	focus := domain.FocusOn(domain.PhaseIntro, c.Checklist(domain.PhaseIntro)[2])

	reply, err := e.Respond(c, TurnState{Turn: 1, Focus: focus, PhaseAnswers: []string{"It started at rest and radiates to the jaw"}}, "He is a smoker with diabetes")
	require.NoError(t, err)
	require.NotNil(t, reply.ConsumedFocus)
	assert.Equal(t, "Risk factors", reply.ConsumedFocus.Label)
	assert.True(t, reply.FocusResolved)
	assert.Equal(t, domain.PhaseIntro, reply.AnswerPhase)
	assert.Equal(t, 1.0, reply.Coverage.Ratio(), "coverage accumulates across the phase")

	reply, err = e.Respond(c, TurnState{Turn: 1, Focus: focus}, "No idea about that one")
	require.NoError(t, err)
	assert.False(t, reply.FocusResolved)

	reply, err = e.Respond(c, TurnState{Turn: 0}, "It started at rest")
	require.NoError(t, err)
	assert.Nil(t, reply.ConsumedFocus)
}

func TestRespond_RecordsRedFlags(t *testing.T) {
	c := chestPainCase()
	reply, err := New(nil).Respond(c, TurnState{Turn: 7}, "Thrombolysis now")
	require.NoError(t, err)
	assert.Equal(t, []string{"Thrombolysis"}, reply.RedFlags)
	assert.Equal(t, domain.KindInterrupt, reply.Kind, "interruptions win at phase boundaries too")
	assert.Equal(t, domain.PhaseClosing, reply.Phase)
	assert.Contains(t, reply.Text, "Summarize the case")
}

func TestRespond_IsDeterministic(t *testing.T) {
	c := chestPainCase()
	e := New(nil)
	state := TurnState{Turn: 3, PhaseAnswers: []string{"ACS"}}

	first, err := e.Respond(c, state, "Maybe a dissection, or perhaps an embolism")
	require.NoError(t, err)
	second, err := e.Respond(c, state, "Maybe a dissection, or perhaps an embolism")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("replies differ (-first +second):\n%s", diff)
	}
}

func TestRespond_StrictnessChangesThresholds(t *testing.T) {
	c := chestPainCase()
	answer := "1. ACS\n2. Aortic dissection"

	standard, err := New(nil).Respond(c, TurnState{Turn: 2}, answer)
	require.NoError(t, err)
	assert.Equal(t, domain.KindFollowUp, standard.Kind)

	lenient, err := New(nil).WithStrictness(domain.StrictnessLenient).Respond(c, TurnState{Turn: 2}, answer)
	require.NoError(t, err)
	assert.Equal(t, domain.KindEscalate, lenient.Kind, "2/3 coverage escalates when lenient")
}

func TestHint(t *testing.T) {
	c := chestPainCase()
	e := New(nil)
	riskFocus := domain.FocusOn(domain.PhaseIntro, c.Checklist(domain.PhaseIntro)[2])
	staleFocus := domain.FocusOn(domain.PhaseIntro, c.Checklist(domain.PhaseIntro)[1])

	tests := []struct {
		name  string
		state TurnState
		want  string
	}{
		{"first miss without answers", TurnState{Turn: 0}, "Think about onset."},
		{"pending focus uses its prompt", TurnState{Turn: 1, Focus: riskFocus}, "What are his cardiovascular risk factors?"},
		{"covered items are skipped", TurnState{Turn: 1, PhaseAnswers: []string{"It started at rest"}}, "Consider radiation."},
		{"focus from another phase is ignored", TurnState{Turn: 2, Focus: staleFocus}, "Think about acs."},
		{"covered phase gets a generic nudge", TurnState{Turn: 3, PhaseAnswers: []string{"ACS, dissection, embolism"}}, genericHint},
		{"done session has no hint", TurnState{Turn: TotalTurns(2)}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Hint(c, tc.state))
		})
	}
}
