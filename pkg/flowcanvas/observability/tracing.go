package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("flowcanvas")

// SpanManager handles trace span lifecycle for run service requests.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when
// disabled.
type SpanManager interface {
	// StartRequestSpan starts a span covering one HTTP request to the
	// run service, including stream consumption for run/debug calls.
	StartRequestSpan(ctx context.Context, path, workflowID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure
// the provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRequestSpan starts a span for a run service request.
func (m *otelSpanManager) StartRequestSpan(ctx context.Context, path, workflowID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "flowcanvas.request",
		trace.WithAttributes(
			attribute.String("http.path", path),
			attribute.String("workflow.id", workflowID),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
