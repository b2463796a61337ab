// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/viva-api/internal/config"
	"github.com/phrazzld/viva-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter_Levels(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
	}{
		{level: "debug", debugShown: true, infoShown: true},
		{level: "info", debugShown: false, infoShown: true},
		{level: "WARN", debugShown: false, infoShown: false},
		{level: "error", debugShown: false, infoShown: false},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: tc.level}, &buf)
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")

			out := buf.String()
			assert.Equal(t, tc.debugShown, strings.Contains(out, "debug message"))
			assert.Equal(t, tc.infoShown, strings.Contains(out, "info message"))
		})
	}
}

func TestSetupWithWriter_InvalidLevelWarns(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "verbose"}, &buf)
	require.NoError(t, err)

	line := strings.Split(strings.TrimSpace(buf.String()), "\n")[0]
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "verbose", entry["configured_level"])

	buf.Reset()
	l.Info("still logging")
	assert.Contains(t, buf.String(), "still logging")
	assert.Same(t, l, slog.Default())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	scoped := slog.New(slog.NewJSONHandler(&buf, nil)).With("trace_id", "abc")
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	ctx := logger.WithContext(context.Background(), scoped)

	assert.Same(t, scoped, logger.FromContext(ctx))
	assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
}
