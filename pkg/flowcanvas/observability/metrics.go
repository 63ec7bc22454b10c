package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowcanvas metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when
// disabled.
type MetricsRecorder interface {
	// RecordEventApplied records one run-stream event folded into the
	// reducer, tagged with its status code.
	RecordEventApplied(ctx context.Context, status int)

	// RecordRunFinished records a run reaching terminal status with
	// its total wall-clock duration.
	RecordRunFinished(ctx context.Context, duration time.Duration)

	// RecordStreamOutput records bytes of streamed output text
	// appended to a run.
	RecordStreamOutput(ctx context.Context, bytes int)

	// RecordRequest records a run service HTTP request outcome.
	RecordRequest(ctx context.Context, path string, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsApplied metric.Int64Counter
	runsFinished  metric.Int64Counter
	runDuration   metric.Float64Histogram
	streamBytes   metric.Int64Counter
	requests      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowcanvas")

	eventsApplied, err := meter.Int64Counter("flowcanvas.run.events",
		metric.WithDescription("Number of run-stream events applied"),
	)
	if err != nil {
		return nil, err
	}

	runsFinished, err := meter.Int64Counter("flowcanvas.run.finished",
		metric.WithDescription("Number of runs reaching terminal status"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram("flowcanvas.run.duration_ms",
		metric.WithDescription("Run wall-clock duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	streamBytes, err := meter.Int64Counter("flowcanvas.run.stream_bytes",
		metric.WithDescription("Bytes of streamed output text accumulated"),
	)
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("flowcanvas.api.requests",
		metric.WithDescription("Run service requests by path and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsApplied: eventsApplied,
		runsFinished:  runsFinished,
		runDuration:   runDuration,
		streamBytes:   streamBytes,
		requests:      requests,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global
// OTel meter provider. Configure the provider before calling this;
// if instrument creation fails, a no-op recorder is returned.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		return NoopMetrics{}
	}
	return m
}

// RecordEventApplied implements MetricsRecorder.
func (m *otelMetrics) RecordEventApplied(ctx context.Context, status int) {
	m.eventsApplied.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("status", status),
	))
}

// RecordRunFinished implements MetricsRecorder.
func (m *otelMetrics) RecordRunFinished(ctx context.Context, duration time.Duration) {
	m.runsFinished.Add(ctx, 1)
	m.runDuration.Record(ctx, float64(duration.Milliseconds()))
}

// RecordStreamOutput implements MetricsRecorder.
func (m *otelMetrics) RecordStreamOutput(ctx context.Context, bytes int) {
	m.streamBytes.Add(ctx, int64(bytes))
}

// RecordRequest implements MetricsRecorder.
func (m *otelMetrics) RecordRequest(ctx context.Context, path string, err error) {
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.Bool("error", err != nil),
	))
}
