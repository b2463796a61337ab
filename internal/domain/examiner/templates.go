package examiner

import (
	"fmt"
	"strings"

	"github.com/phrazzld/viva-api/internal/domain"
)

var (
	acknowledgeLines = []string{
		"Thank you.",
		"Alright, let's move on.",
		"Okay.",
		"Noted.",
	}
	elaborateLines = []string{
		"Could you expand on that?",
		"That is rather brief. Walk me through your reasoning.",
		"Can you say more?",
	}
	structureLines = []string{
		"Please structure your answer. Give me a ranked list.",
		"Try to organize that. What comes first, and what next?",
	}
	commitLines = []string{
		"You sound unsure. Commit to an answer.",
		"I need a decision. What is your answer?",
	}
	escalateLines = []string{
		"Good.",
		"Very good.",
		"That is correct.",
	}
	genericEscalations = []string{
		"Now suppose the patient deteriorates despite this. What do you do?",
		"What would change your thinking here?",
	}
	missLines = []string{
		"What about %s?",
		"Have you considered %s?",
		"You haven't mentioned %s.",
	}
	probeLines = []string{
		"Anything else you would add?",
		"Is that everything?",
	}
	rambleLines = []string{
		"Let me stop you there.",
		"I'm going to interrupt you.",
	}
	hintLines = []string{
		"Think about %s.",
		"Consider %s.",
	}
	redFlagLines = []string{
		"Stop. That would be dangerous for this patient (%s).",
		"I have to interrupt: that is unsafe (%s).",
	}
)

const (
	defaultClosing = "Thank you, that concludes the examination."
	genericHint    = "Take it step by step. What would you do first, and why?"
)

func pick(lines []string, variant int) string {
	if variant < 0 {
		variant = -variant
	}
	return lines[variant%len(lines)]
}

func missPrompt(item domain.ChecklistItem, variant int) string {
	if strings.TrimSpace(item.Prompt) != "" {
		return item.Prompt
	}
	return fmt.Sprintf(pick(missLines, variant), strings.ToLower(item.Label))
}

func joinLines(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
