package examiner

import (
	"testing"

	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Électro\tCardiogramme  ", "electro cardiogramme"},
		{"TROPONIN", "troponin"},
		{"naïve\n\ncafé", "naive cafe"},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Normalize(tc.in), tc.in)
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Patient reports DYSPNÉE", []string{"dyspnee"}))
	assert.True(t, ContainsAny("order an ECG", []string{"troponin", "ecg"}))
	assert.True(t, ContainsAny("smoker for 20 years", []string{"smok"}), "substring match")
	assert.False(t, ContainsAny("order an ECG", []string{"troponin"}))
	assert.False(t, ContainsAny("anything", []string{"", "   "}), "blank keywords never match")
	assert.False(t, ContainsAny("anything", nil))
}

func TestMatch(t *testing.T) {
	items := chestPainCase().Checklist(domain.PhaseDiagnostics)

	cov := Match(domain.PhaseDiagnostics, "I would order a troponin and an EKG", items)

	assert.Equal(t, domain.PhaseDiagnostics, cov.Phase)
	assert.Equal(t, []string{"ECG", "Troponin"}, cov.HitLabels(), "hits keep checklist order")
	assert.Equal(t, []string{"Chest X-ray"}, cov.MissLabels())
	assert.Equal(t, 3, cov.Total())
	assert.InDelta(t, 2.0/3.0, cov.Ratio(), 1e-9)

	miss, ok := cov.FirstMiss()
	assert.True(t, ok)
	assert.Equal(t, "Chest X-ray", miss.Label)
}

func TestMatchEmptyChecklist(t *testing.T) {
	cov := Match(domain.PhaseClosing, "anything", nil)
	assert.Zero(t, cov.Total())
	assert.Zero(t, cov.Ratio())
	_, ok := cov.FirstMiss()
	assert.False(t, ok)
	assert.Empty(t, cov.HitLabels())
}

func TestMatchItemWithoutKeywordsIsMiss(t *testing.T) {
	items := []domain.ChecklistItem{{Label: "Empty"}}
	cov := Match(domain.PhaseIntro, "Empty", items)
	assert.Equal(t, []string{"Empty"}, cov.MissLabels())
}
