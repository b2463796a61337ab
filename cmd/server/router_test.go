package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/llm"
	"github.com/phrazzld/viva-api/internal/mocks"
	"github.com/phrazzld/viva-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplication(t *testing.T) *application {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	library, err := cases.Load("", logger)
	require.NoError(t, err)

	userID := uuid.New()
	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != "valid" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: "access"}, nil
		},
	}
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info", AIRequestsPerMinute: 1, AIBurst: 1},
			Auth:   config.AuthConfig{TokenLifetimeMinutes: 60},
			LLM:    config.LLMConfig{TimeoutSeconds: 5},
		},
		logger:     logger,
		caseStore:  library,
		jwtService: jwt,
		llmClient: llm.ClientFunc(func(context.Context, llm.Request) (*llm.Response, error) {
			return &llm.Response{Text: "ok"}, nil
		}),
	}
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testApplication(t).setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testApplication(t).setupRouter())
	defer srv.Close()

	do := func(method, path, token, body string) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/cases", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/cases", "forged", "").StatusCode)

	resp := do(http.MethodGet, "/api/cases", "valid", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	assert.NotEmpty(t, summaries)

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/cases/acute-stroke", "valid", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/nowhere", "valid", "").StatusCode)
}

func TestRouter_ChatIsRateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(testApplication(t).setupRouter())
	defer srv.Close()

	chat := func() int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/ai/chat",
			strings.NewReader(`{"messages":[{"role":"user","content":"hi"}]}`))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer valid")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, chat())
	assert.Equal(t, http.StatusTooManyRequests, chat())
}
