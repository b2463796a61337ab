package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays fixed input lines, then reports EOF.
type scripted struct {
	lines []string
}

func (s *scripted) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func chestPain(t *testing.T) *domain.Case {
	t.Helper()
	lib, err := cases.Load("", cliLogger())
	require.NoError(t, err)
	c, err := lib.Get(context.Background(), "acute-chest-pain")
	require.NoError(t, err)
	return c
}

// keywordAnswer names every checklist item of p using its first keyword.
func keywordAnswer(c *domain.Case, p domain.Phase) string {
	var parts []string
	for _, item := range c.Checklist(p) {
		parts = append(parts, item.Keywords[0])
	}
	return "I would consider " + strings.Join(parts, ", ") + " in this patient."
}

func runSim(t *testing.T, c *domain.Case, lines []string) (domain.Feedback, string) {
	t.Helper()
	var out bytes.Buffer
	sim := newSimulator(examiner.New(nil), c, &out)
	sim.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	fb, err := sim.run(&scripted{lines: lines})
	require.NoError(t, err)
	return fb, out.String()
}

func TestSimulator_FullExam(t *testing.T) {
	t.Parallel()

	c := chestPain(t)
	var strong, vague []string
	for _, p := range domain.Phases {
		for i := 0; i < examiner.DefaultTurnsPerPhase; i++ {
			strong = append(strong, keywordAnswer(c, p))
			vague = append(vague, "I am not entirely sure what I would do here.")
		}
	}
	// Input after the examiner closes is never read.
	strong = append(strong, "extra")

	strongFB, out := runSim(t, c, strong)
	vagueFB, _ := runSim(t, c, vague)

	assert.Contains(t, out, c.Title)
	assert.Contains(t, out, examiner.Closing(c))
	assert.Contains(t, out, "=== Feedback ===")
	assert.Greater(t, strongFB.Score.Percent, vagueFB.Score.Percent)
	assert.Empty(t, strongFB.RedFlags)
	assert.False(t, vagueFB.Score.Passed)
}

func TestSimulator_QuitEarly(t *testing.T) {
	t.Parallel()

	c := chestPain(t)
	fb, out := runSim(t, c, []string{keywordAnswer(c, domain.PhaseIntro), "/quit", "never read"})

	assert.NotContains(t, out, examiner.Closing(c))
	require.NotEmpty(t, fb.Phases)
	assert.Equal(t, domain.PhaseIntro, fb.Phases[0].Phase)
	assert.Greater(t, fb.Phases[0].Ratio, 0.0)
}

func TestSimulator_BlankLinesAndRedFlags(t *testing.T) {
	t.Parallel()

	c := chestPain(t)
	fb, out := runSim(t, c, []string{"   ", "Reassure and send him home."})

	assert.Contains(t, out, "hint:")
	assert.Contains(t, out, "Think about onset and character.")
	assert.Contains(t, out, "red flag:")
	assert.Equal(t, []string{"Discharging a patient with ongoing chest pain"}, fb.RedFlags)
}

func TestSimulator_BlankLineHintsAtPendingFocus(t *testing.T) {
	t.Parallel()

	c := chestPain(t)
	_, out := runSim(t, c, []string{"", "/quit"})
	assert.Contains(t, out, "hint:")
	assert.Contains(t, out, "(answer, or /quit to finish)")

	_, out = runSim(t, c, []string{"It started suddenly two hours ago, crushing in character.", "", "/quit"})
	// Once as the examiner's follow-up, once as the hint.
	assert.Equal(t, 2, strings.Count(out, "Where does the pain go?"))
	assert.NotContains(t, out, "Think about onset and character.")
}
