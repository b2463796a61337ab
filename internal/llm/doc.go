// Package llm defines the provider-neutral client used to talk to large
// language models.
//
// Providers live under internal/platform (gemini, anthropic) and implement
// Client. This package adds the cross-cutting wrappers that every provider
// shares:
//
//   - Retrying: exponential backoff with jitter and a circuit breaker
//   - Limited: a semaphore bounding concurrent upstream calls
//   - Disabled: the client used when no provider is configured
//
// ExtractText and ExtractJSON turn raw model output into usable values.
// Models often wrap JSON in code fences or add trailing commas, so
// ExtractJSON parses leniently.
package llm
