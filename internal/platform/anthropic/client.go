// Package anthropic implements llm.Client on top of the Anthropic Messages
// API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phrazzld/viva-api/internal/llm"
)

const (
	// DefaultModel is used when no model name is configured.
	DefaultModel = "claude-sonnet-4-5"

	defaultMaxTokens = 1024
)

// ErrInvalidConfig is returned when the client configuration is incomplete.
var ErrInvalidConfig = errors.New("invalid anthropic configuration")

// Config holds the provider settings.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// messageCreator is the subset of the SDK's MessageService used by Client.
type messageCreator interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client sends completion requests to Anthropic.
type Client struct {
	messages  messageCreator
	model     string
	maxTokens int
	logger    *slog.Logger
}

// New creates a Client authenticated with cfg.APIKey.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key cannot be empty", ErrInvalidConfig)
	}
	client := sdk.NewClient(option.WithAPIKey(cfg.APIKey))
	return newClient(&client.Messages, cfg, logger), nil
}

func newClient(messages messageCreator, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		messages:  messages,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.With("component", "anthropic"),
	}
}

// Complete implements llm.Client. The Messages API has no JSON response
// mode, so JSON requests get an extra instruction in the system prompt and
// callers parse the text with llm.ExtractJSON.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages:  make([]sdk.MessageParam, 0, len(req.Messages)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if system := systemPrompt(req); system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	for _, m := range req.Messages {
		block := sdk.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, sdk.NewUserMessage(block))
		}
	}

	c.logger.DebugContext(ctx, "calling anthropic",
		"model", c.model,
		"messages", len(params.Messages),
		"json", req.JSON)

	msg, err := c.messages.New(ctx, params)
	if err != nil {
		return nil, classifyError(err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", llm.ErrInvalidResponse)
	}
	if msg.StopReason == "refusal" {
		return nil, fmt.Errorf("%w: model refused", llm.ErrContentBlocked)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		c.logger.WarnContext(ctx, "anthropic response has no text", "stop_reason", msg.StopReason)
		return nil, fmt.Errorf("%w: no text blocks", llm.ErrInvalidResponse)
	}
	return &llm.Response{Text: b.String(), Model: c.model}, nil
}

func systemPrompt(req llm.Request) string {
	if !req.JSON {
		return req.System
	}
	const jsonOnly = "Respond with a single JSON value and no other text."
	if req.System == "" {
		return jsonOnly
	}
	return req.System + "\n\n" + jsonOnly
}

func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", llm.ErrTransient, err)
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if llm.TransientStatus(apiErr.StatusCode) {
			return fmt.Errorf("%w: anthropic status %d: %w", llm.ErrTransient, apiErr.StatusCode, err)
		}
		return fmt.Errorf("anthropic request failed (status %d): %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("%w: anthropic: %w", llm.ErrTransient, err)
}

var _ llm.Client = (*Client)(nil)
