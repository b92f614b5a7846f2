package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the pulse tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("pulse")

// SpanManager handles trace span lifecycle for publish calls.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPublishSpan starts a span covering one publish call.
	// Returns the context with span and the span itself.
	StartPublishSpan(ctx context.Context, eventName string, listenerCount int) (context.Context, trace.Span)

	// EndPublishSpan completes a publish span. Listener failures are
	// isolated, so the span itself always ends Ok.
	EndPublishSpan(span trace.Span)

	// AddListenerFailure records an isolated listener failure as an event
	// on the span in ctx.
	AddListenerFailure(ctx context.Context, listenerID string, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartPublishSpan starts a span covering one publish call.
func (m *otelSpanManager) StartPublishSpan(ctx context.Context, eventName string, listenerCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "pulse.publish",
		trace.WithAttributes(
			attribute.String("event.name", eventName),
			attribute.Int("event.listeners", listenerCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndPublishSpan completes a publish span.
func (m *otelSpanManager) EndPublishSpan(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
	span.End()
}

// AddListenerFailure records an isolated listener failure on the current span.
func (m *otelSpanManager) AddListenerFailure(ctx context.Context, listenerID string, err error) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent("listener.failed", trace.WithAttributes(
		attribute.String("listener_id", listenerID),
		attribute.String("error", err.Error()),
	))
}
