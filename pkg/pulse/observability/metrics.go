package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder exports bus metrics to an external collector.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
//
// Implementations must be safe to call from background goroutines after the
// publish that started them has returned.
type MetricsRecorder interface {
	// RecordPublish records one publish with its matched listener count.
	RecordPublish(ctx context.Context, eventName string, listenerCount int)

	// RecordListenerError records one isolated listener failure.
	RecordListenerError(ctx context.Context, eventName, listenerID string)

	// RecordPublishDuration records how long the awaited tiers of a
	// publish took.
	RecordPublishDuration(ctx context.Context, eventName string, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes      metric.Int64Counter
	listenerErrors metric.Int64Counter
	publishLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("pulse")

	publishes, err := meter.Int64Counter("pulse.publishes",
		metric.WithDescription("Number of events published"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("pulse.listener.errors",
		metric.WithDescription("Number of isolated listener failures"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("pulse.publish.latency_ms",
		metric.WithDescription("Publish latency across awaited tiers in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:      publishes,
		listenerErrors: listenerErrors,
		publishLatency: publishLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records one publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, eventName string, listenerCount int) {
	m.publishes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.Int("listeners", listenerCount),
	))
}

// RecordListenerError records one isolated listener failure.
func (m *otelMetrics) RecordListenerError(ctx context.Context, eventName, listenerID string) {
	m.listenerErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", eventName),
		attribute.String("listener_id", listenerID),
	))
}

// RecordPublishDuration records the awaited-tier latency of a publish.
func (m *otelMetrics) RecordPublishDuration(ctx context.Context, eventName string, duration time.Duration) {
	m.publishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("event", eventName),
	))
}
