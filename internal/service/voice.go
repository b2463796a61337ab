package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/phrazzld/viva-api/internal/llm"
)

// ExaminerVoice rewrites the rule engine's examiner line. The engine's
// decision (kind, phase, focus) is never changed, only its wording.
type ExaminerVoice interface {
	Phrase(ctx context.Context, c *domain.Case, transcript []domain.Message, reply examiner.Reply) (string, error)
}

const (
	voiceHistoryLimit = 12
	voiceMaxTokens    = 300
)

const voiceSystemPrompt = `You are a senior consultant examining a final-year medical student in an oral exam (viva).
Stay in character and speak only as the examiner. Be concise: at most three sentences.
Never reveal the expected answers or list what the candidate missed.
Keep the intent of the draft line below: the same kind of move and the same question.`

// LLMVoice phrases examiner lines with a language model.
type LLMVoice struct {
	client  llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewLLMVoice creates an LLM-backed examiner voice. A non-positive timeout
// defaults to 20 seconds.
func NewLLMVoice(client llm.Client, timeout time.Duration, logger *slog.Logger) *LLMVoice {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMVoice{client: client, timeout: timeout, logger: logger.With("component", "llm_voice")}
}

// Phrase asks the model for the examiner's next line.
func (v *LLMVoice) Phrase(ctx context.Context, c *domain.Case, transcript []domain.Message, reply examiner.Reply) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req := llm.Request{
		System:    voiceSystem(c, reply),
		Messages:  chatHistory(transcript, voiceHistoryLimit),
		MaxTokens: voiceMaxTokens,
	}
	resp, err := v.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return llm.ExtractText(resp)
}

func voiceSystem(c *domain.Case, reply examiner.Reply) string {
	var b strings.Builder
	b.WriteString(voiceSystemPrompt)
	fmt.Fprintf(&b, "\n\nCase: %s (%s).\nVignette: %s\n", c.Title, c.Specialty, c.Vignette)
	fmt.Fprintf(&b, "Phase of your next line: %s.\n", reply.Phase.Title())
	fmt.Fprintf(&b, "Move: %s.\n", reply.Kind)
	if reply.Focus != nil {
		fmt.Fprintf(&b, "Steer the candidate towards: %s (do not name it outright).\n", reply.Focus.Label)
	}
	fmt.Fprintf(&b, "Draft line: %q", reply.Text)
	return b.String()
}

// chatHistory maps the transcript onto chat roles: the model plays the
// examiner. The history always starts and ends with a user message.
func chatHistory(transcript []domain.Message, limit int) []llm.ChatMessage {
	if limit > 0 && len(transcript) > limit {
		transcript = transcript[len(transcript)-limit:]
	}
	out := make([]llm.ChatMessage, 0, len(transcript)+1)
	for _, m := range transcript {
		role := llm.RoleUser
		if m.Role == domain.RoleExaminer {
			role = llm.RoleAssistant
		}
		if len(out) == 0 && role == llm.RoleAssistant {
			out = append(out, llm.ChatMessage{Role: llm.RoleUser, Content: "I am ready to begin."})
		}
		out = append(out, llm.ChatMessage{Role: role, Content: m.Text})
	}
	if len(out) == 0 || out[len(out)-1].Role != llm.RoleUser {
		out = append(out, llm.ChatMessage{Role: llm.RoleUser, Content: "Please continue."})
	}
	return out
}
