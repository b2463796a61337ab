package examiner

import (
	"testing"

	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPhaseForTurn(t *testing.T) {
	tests := []struct {
		turn          int
		turnsPerPhase int
		want          domain.Phase
	}{
		{-1, 2, domain.PhaseIntro},
		{0, 2, domain.PhaseIntro},
		{1, 2, domain.PhaseIntro},
		{2, 2, domain.PhaseDDx},
		{3, 2, domain.PhaseDDx},
		{4, 2, domain.PhaseDiagnostics},
		{6, 2, domain.PhaseManagement},
		{8, 2, domain.PhaseClosing},
		{9, 2, domain.PhaseClosing},
		{50, 2, domain.PhaseClosing},
		{2, 1, domain.PhaseDiagnostics},
		{3, 3, domain.PhaseDDx},
		{2, 0, domain.PhaseDDx},
		{2, -4, domain.PhaseDDx},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PhaseForTurn(tc.turn, tc.turnsPerPhase), "turn %d / %d", tc.turn, tc.turnsPerPhase)
	}
}

func TestTotalTurns(t *testing.T) {
	assert.Equal(t, 10, TotalTurns(2))
	assert.Equal(t, 10, TotalTurns(0))
	assert.Equal(t, 15, TotalTurns(3))
	assert.Equal(t, 5, TotalTurns(1))
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		words      int
		structured bool
		hedges     int
	}{
		{"bullets", "- ACS\n- PE\n- dissection", 6, true, 0},
		{"numbered", "1. ACS\n2) dissection", 4, true, 0},
		{"commas", "ACS, dissection, embolism", 3, true, 0},
		{"ordinals", "First ACS then dissection", 4, true, 0},
		{"prose", "It is an acute coronary syndrome", 6, false, 0},
		{"hedging", "I think maybe it is ACS, probably", 7, false, 3},
		{"hedge words need boundaries", "a thinker", 2, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := Analyze(tc.answer)
			assert.Equal(t, tc.words, a.Words)
			assert.Equal(t, tc.structured, a.Structured)
			assert.Equal(t, tc.hedges, a.Hedges)
		})
	}
}

func TestParamsWithStrictness(t *testing.T) {
	base := NewParams(ParamsConfig{TurnsPerPhase: 3, MaxDrills: 5})

	strict := base.WithStrictness(domain.StrictnessStrict)
	assert.Equal(t, 10, strict.MinAnswerWords)
	assert.Equal(t, 0.9, strict.EscalateThreshold)
	assert.Equal(t, 3, strict.TurnsPerPhase, "turn settings survive presets")
	assert.Equal(t, 5, strict.MaxDrills)

	lenient := base.WithStrictness(domain.StrictnessLenient)
	assert.Equal(t, 4, lenient.MinAnswerWords)

	standard := strict.WithStrictness(domain.StrictnessStandard)
	assert.Equal(t, NewDefaultParams().MinAnswerWords, standard.MinAnswerWords)

	assert.Equal(t, 6, base.MinAnswerWords, "base is not modified")
}
