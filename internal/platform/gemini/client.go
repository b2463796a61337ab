package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/viva-api/internal/llm"
	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrInvalidConfig is returned when the client configuration is incomplete.
var ErrInvalidConfig = errors.New("invalid gemini configuration")

// Config holds the provider settings.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// contentGenerator is the subset of genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client sends completion requests to Gemini.
type Client struct {
	models    contentGenerator
	model     string
	maxTokens int
	logger    *slog.Logger
}

// New creates a Client backed by the Gemini API.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key cannot be empty", ErrInvalidConfig)
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", ErrInvalidConfig, err)
	}
	return newClient(gc.Models, cfg, logger), nil
}

func newClient(models contentGenerator, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		models:    models,
		model:     model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.With("component", "gemini"),
	}
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}
	if maxTokens := c.tokens(req); maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	c.logger.DebugContext(ctx, "calling gemini",
		"model", c.model,
		"messages", len(contents),
		"json", req.JSON)

	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, classifyError(err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "unusable gemini response", "error", err)
		return nil, err
	}
	return &llm.Response{Text: text, Model: c.model}, nil
}

func (c *Client) tokens(req llm.Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return c.maxTokens
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", llm.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("%w: prompt blocked (%s)", llm.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", llm.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked", llm.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", llm.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: no text parts", llm.ErrInvalidResponse)
	}
	return b.String(), nil
}

// classifyError marks rate limits, timeouts and server errors as transient.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", llm.ErrTransient, err)
	}

	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == 0 || llm.TransientStatus(code) {
		// Errors without a status come from the transport layer.
		return fmt.Errorf("%w: gemini: %v", llm.ErrTransient, err)
	}
	return fmt.Errorf("gemini request failed (status %d): %w", code, err)
}

var _ llm.Client = (*Client)(nil)
