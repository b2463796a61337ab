package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is one entry of a conversation history.
type ChatMessage struct {
	Role    Role   `json:"role"    validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Request is a single completion request.
type Request struct {
	// System is an optional system instruction.
	System string
	// Messages is the conversation so far. It must end with a user message.
	Messages []ChatMessage
	// JSON asks the provider for a JSON-only response.
	JSON bool
	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int
}

// Validate checks that the request can be sent to a provider.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidRequest)
	}
	for i, m := range r.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidRequest, i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: message %d is empty", ErrInvalidRequest, i)
		}
	}
	if last := r.Messages[len(r.Messages)-1]; last.Role != RoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidRequest)
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("%w: negative max tokens", ErrInvalidRequest)
	}
	return nil
}

// UserPrompt builds a one-shot request from a system instruction and a
// single user prompt.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []ChatMessage{{Role: RoleUser, Content: prompt}},
	}
}

// Response is the text produced by a provider.
type Response struct {
	Text  string
	Model string
}

// Client sends completion requests to a language model.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

// Complete calls f(ctx, req).
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

var (
	// ErrDisabled is returned when no provider is configured.
	ErrDisabled = errors.New("language model is disabled")

	// ErrInvalidRequest is returned for requests that fail validation.
	ErrInvalidRequest = errors.New("invalid language model request")

	// ErrInvalidResponse is returned when the model output cannot be used.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider's safety filters block
	// the prompt or the response.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransient marks upstream failures that may succeed on retry, such as
	// rate limiting and server errors.
	ErrTransient = errors.New("transient language model failure")

	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("language model circuit breaker is open")
)

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded)
}

// TransientStatus reports whether an HTTP status code from a provider
// indicates a transient failure.
func TransientStatus(code int) bool {
	return code == 408 || code == 429 || code >= 500
}

// Disabled is the client used when no provider is configured.
type Disabled struct{}

// Complete always fails with ErrDisabled.
func (Disabled) Complete(context.Context, Request) (*Response, error) {
	return nil, ErrDisabled
}

var _ Client = Disabled{}
