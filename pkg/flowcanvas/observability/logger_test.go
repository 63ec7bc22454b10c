package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCaptureLogger returns a debug-level JSON logger writing to buf.
func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, buf
}

// decodeLines parses every JSON log line in the buffer.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newCaptureLogger()

	enriched := EnrichLogger(logger, "r-1", "wf-1")
	require.NotNil(t, enriched)
	enriched.InfoContext(context.Background(), "test message")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "r-1", lines[0]["run_id"])
	assert.Equal(t, "wf-1", lines[0]["workflow_id"])
}

func TestEnrichLogger_NilLogger(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "r-1", "wf-1"))
}

func TestLogRunStarted(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogRunStarted(logger, "r-1")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "run started", lines[0]["msg"])
	assert.Equal(t, "r-1", lines[0]["run_id"])
	assert.Equal(t, "INFO", lines[0]["level"])
}

func TestLogNodeCompleted(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogNodeCompleted(logger, "r-1", "llm-1", 42)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "node completed", lines[0]["msg"])
	assert.Equal(t, "llm-1", lines[0]["node_id"])
	assert.Equal(t, float64(42), lines[0]["duration_ms"])
	assert.Equal(t, "DEBUG", lines[0]["level"])
}

func TestLogRunFinished(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogRunFinished(logger, "r-1", 1500*time.Millisecond, 4)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "run finished", lines[0]["msg"])
	assert.Equal(t, float64(1500), lines[0]["duration_ms"])
	assert.Equal(t, float64(4), lines[0]["nodes_executed"])
}

func TestLogStreamError(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogStreamError(logger, "r-1", "model timeout")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "model timeout", lines[0]["error"])
}

func TestLogRequestError(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogRequestError(logger, "/workflow/run", errors.New("connection refused"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "/workflow/run", lines[0]["path"])
	assert.Equal(t, "connection refused", lines[0]["error"])
}

// TestLogHelpers_NilSafe verifies every helper tolerates a nil logger.
func TestLogHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRunStarted(nil, "r-1")
		LogNodeCompleted(nil, "r-1", "n", 1)
		LogRunFinished(nil, "r-1", time.Second, 1)
		LogStreamError(nil, "r-1", "e")
		LogRequestError(nil, "/p", errors.New("e"))
	})
}
