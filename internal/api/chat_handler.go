package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/viva-api/internal/api/shared"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/platform/logger"
)

const chatMaxTokens = 1024

// ChatHandler proxies chat requests to the configured language model.
type ChatHandler struct {
	client  llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewChatHandler creates the handler. A non-positive timeout defaults to 60
// seconds.
func NewChatHandler(client llm.Client, timeout time.Duration, logger *slog.Logger) *ChatHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{client: client, timeout: timeout, logger: logger.With(slog.String("component", "chat_handler"))}
}

// Chat handles POST /ai/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	var req ChatRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	llmReq := llm.Request{System: req.System, JSON: req.JSON, MaxTokens: chatMaxTokens}
	for _, m := range req.Messages {
		llmReq.Messages = append(llmReq.Messages, llm.ChatMessage{Role: llm.Role(m.Role), Content: m.Content})
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	resp, err := h.client.Complete(ctx, llmReq)
	if err != nil {
		HandleAPIError(w, r, err, "Chat request failed")
		return
	}
	text, err := llm.ExtractText(resp)
	if err != nil {
		HandleAPIError(w, r, err, "Chat request failed")
		return
	}

	out := ChatResponse{Text: text, Model: resp.Model}
	if req.JSON {
		parsed, err := llm.ExtractJSON[any](text)
		if err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Debug("chat reply is not valid JSON", "error", err)
		} else {
			out.JSON = parsed
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
