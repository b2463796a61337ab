package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/platform/anthropic"
	"github.com/phrazzld/viva-api/internal/platform/gemini"
	"github.com/phrazzld/viva-api/internal/redact"
)

// newLLMClient builds the configured provider behind retries, a circuit
// breaker and a concurrency cap. Provider "none" yields llm.Disabled.
func newLLMClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llm.Client, error) {
	var (
		base llm.Client
		key  string
	)
	switch cfg.Provider {
	case "none", "":
		logger.Info("language model disabled")
		return llm.Disabled{}, nil
	case "gemini":
		key = cfg.GeminiAPIKey
		c, err := gemini.New(ctx, gemini.Config{APIKey: key, Model: cfg.ModelName, MaxTokens: cfg.MaxTokens}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		base = c
	case "anthropic":
		key = cfg.AnthropicAPIKey
		c, err := anthropic.New(anthropic.Config{APIKey: key, Model: cfg.ModelName, MaxTokens: cfg.MaxTokens}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		base = c
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	retry := llm.DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	retry.InitialBackoff = time.Duration(cfg.RetryDelaySeconds) * time.Second
	retry.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	logger.Info("language model initialized",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.ModelName),
		slog.String("api_key", redact.Mask(key)),
		slog.Int("max_concurrent_calls", cfg.MaxConcurrentCalls))

	return llm.NewLimited(llm.NewRetrying(base, retry, logger), cfg.MaxConcurrentCalls), nil
}
