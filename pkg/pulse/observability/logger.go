// Package observability provides the bus's observability surfaces:
// structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// Every logging helper tolerates a nil logger, and nothing in this package
// can fail in a way that aborts event dispatch.
package observability

import (
	"log/slog"
	"time"
)

// LogSubscribe logs a successful subscription.
func LogSubscribe(logger *slog.Logger, eventKey, listenerID, priority string, once bool) {
	if logger == nil {
		return
	}
	logger.Debug("listener subscribed",
		slog.String("event", eventKey),
		slog.String("listener_id", listenerID),
		slog.String("priority", priority),
		slog.Bool("once", once),
	)
}

// LogDuplicateListener logs a subscription rejected as a duplicate.
func LogDuplicateListener(logger *slog.Logger, eventKey, listenerID string) {
	if logger == nil {
		return
	}
	logger.Warn("duplicate listener prevented",
		slog.String("event", eventKey),
		slog.String("listener_id", listenerID),
	)
}

// LogUnsubscribe logs a removed subscription.
func LogUnsubscribe(logger *slog.Logger, eventKey, listenerID string) {
	if logger == nil {
		return
	}
	logger.Debug("listener unsubscribed",
		slog.String("event", eventKey),
		slog.String("listener_id", listenerID),
	)
}

// LogPublish logs the start of a publish with its matched listener count.
func LogPublish(logger *slog.Logger, eventName string, listenerCount int) {
	if logger == nil {
		return
	}
	logger.Debug("publishing event",
		slog.String("event", eventName),
		slog.Int("listeners", listenerCount),
	)
}

// LogListenerFailure logs one isolated listener failure.
func LogListenerFailure(logger *slog.Logger, eventName, listenerID, priority string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.String("event", eventName),
		slog.String("listener_id", listenerID),
		slog.String("priority", priority),
		slog.String("error", err.Error()),
	)
}

// LogClear logs a registry clear with the previous subscription total.
func LogClear(logger *slog.Logger, removed int) {
	if logger == nil {
		return
	}
	logger.Info("all listeners cleared",
		slog.Int("removed", removed),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, eventName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("failure journal write failed",
		slog.String("event", eventName),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	elapsed := done()
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
