// Package observability provides structured logging, metrics, and
// tracing for flowcanvas: run-stream consumption, graph validation,
// and run service requests.
//
// Logging uses slog from the standard library; metrics and tracing
// use OpenTelemetry. Everything is opt-in, nil-safe, and has no-op
// implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with run_id and workflow_id fields.
func EnrichLogger(logger *slog.Logger, runID, workflowID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("workflow_id", workflowID),
	)
}

// LogRunStarted logs the first event of a run arriving.
func LogRunStarted(logger *slog.Logger, runID string) {
	if logger == nil {
		return
	}
	logger.Info("run started",
		slog.String("run_id", runID),
	)
}

// LogNodeCompleted logs a node-completed stream event.
func LogNodeCompleted(logger *slog.Logger, runID, nodeID string, durationMs int64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("run_id", runID),
		slog.String("node_id", nodeID),
		slog.Int64("duration_ms", durationMs),
	)
}

// LogRunFinished logs run completion.
func LogRunFinished(logger *slog.Logger, runID string, elapsed time.Duration, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("run finished",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", float64(elapsed.Milliseconds())),
		slog.Int("nodes_executed", nodeCount),
	)
}

// LogStreamError logs an error chunk arriving on the run stream.
// The chunk is accumulated, not fatal; the stream continues.
func LogStreamError(logger *slog.Logger, runID, message string) {
	if logger == nil {
		return
	}
	logger.Warn("run stream error chunk",
		slog.String("run_id", runID),
		slog.String("error", message),
	)
}

// LogRequestError logs a failed run service request.
func LogRequestError(logger *slog.Logger, path string, err error) {
	if logger == nil {
		return
	}
	logger.Error("run service request failed",
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}
