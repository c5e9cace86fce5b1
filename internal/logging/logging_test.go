package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestConsoleHandler(t *testing.T) {
	t.Parallel()

	t.Run("json format writes one object per record", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(consoleHandler(&buf, "JSON", &slog.HandlerOptions{Level: slog.LevelInfo}))
		WithRun(logger, "run-1").Info("table loaded", "rows", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "table loaded", entry["msg"])
		assert.Equal(t, "run-1", entry["run_id"])
		assert.InDelta(t, 3, entry["rows"], 0)
	})

	t.Run("text format respects level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := slog.New(consoleHandler(&buf, "text", &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestMultiHandler(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer
	multi := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(multi).With("component", "resolver")

	logger.Debug("tier attempted")
	logger.Warn("manual selection required")

	assert.Contains(t, debugBuf.String(), "tier attempted")
	assert.Contains(t, debugBuf.String(), "manual selection required")
	assert.NotContains(t, warnBuf.String(), "tier attempted")
	assert.Contains(t, warnBuf.String(), "component=resolver")
}
