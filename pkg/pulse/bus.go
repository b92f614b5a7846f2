package pulse

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/pulse/pkg/pulse/journal"
	"github.com/randalmurphal/pulse/pkg/pulse/observability"
)

// Bus is the public façade composing the registry, router, scheduler, and
// metrics recorder. A Bus is constructed once and owns its registry and
// counters for its lifetime; Clear empties the registry without destroying
// the bus. All methods are safe for concurrent use.
type Bus struct {
	registry *Registry
	metrics  *Metrics
	sched    *scheduler

	logger     *slog.Logger
	recorder   observability.MetricsRecorder
	spans      observability.SpanManager
	journal    journal.Journal
	logContext func(fields map[string]any)

	metricsOn atomic.Bool
}

// New creates a Bus. Tier timeouts resolve as: explicit option, then config
// value, then DefaultTierTimeout.
func New(opts ...Option) *Bus {
	var c busConfig
	for _, opt := range opts {
		opt(&c)
	}

	critical := DefaultTierTimeout
	high := DefaultTierTimeout
	if c.cfgSet {
		critical = c.cfg.Duration(CriticalTimeoutKey, DefaultTierTimeout)
		high = c.cfg.Duration(HighTimeoutKey, DefaultTierTimeout)
	}
	if c.criticalSet {
		critical = c.criticalTimeout
	}
	if c.highSet {
		high = c.highTimeout
	}

	spans := c.spans
	if spans == nil {
		spans = observability.NoopSpanManager{}
	}

	b := &Bus{
		registry:   NewRegistry(),
		metrics:    NewMetrics(),
		sched:      newScheduler(critical, high),
		logger:     c.logger,
		recorder:   c.recorder,
		spans:      spans,
		journal:    c.journal,
		logContext: c.logContext,
	}
	b.metricsOn.Store(true)
	b.sched.onFailure = b.handleFailure
	return b
}

// Subscribe registers a callback under an event name or wildcard pattern
// and returns the listener's identifier. A duplicate registration (same key
// and identifier, duplicates not allowed) is not an error: it logs a warning
// and returns the identifier without registering.
func (b *Bus) Subscribe(eventOrPattern string, cb Callback, opts ...SubscribeOption) (string, error) {
	if eventOrPattern == "" {
		return "", ErrEmptyEventName
	}
	if cb == nil {
		return "", ErrNilCallback
	}

	sc := subscribeConfig{priority: Normal}
	for _, opt := range opts {
		opt(&sc)
	}

	id := sc.id
	if id == "" {
		id = deriveListenerID(cb, eventOrPattern)
	}

	added := b.registry.Add(eventOrPattern, Listener{
		ID:       id,
		Priority: sc.priority,
		Once:     sc.once,
		Callback: cb,
	}, sc.allowDuplicates)

	if !added {
		observability.LogDuplicateListener(b.logger, eventOrPattern, id)
		return id, nil
	}

	if b.metricsOn.Load() {
		b.metrics.ListenerAdded()
	}
	observability.LogSubscribe(b.logger, eventOrPattern, id, sc.priority.String(), sc.once)
	return id, nil
}

// Unsubscribe removes the listener registered under the given event name or
// pattern with the given identifier. It returns whether anything was removed.
func (b *Bus) Unsubscribe(eventOrPattern, id string) bool {
	removed := b.registry.Remove(eventOrPattern, id)
	if removed {
		if b.metricsOn.Load() {
			b.metrics.ListenerRemoved()
		}
		observability.LogUnsubscribe(b.logger, eventOrPattern, id)
	}
	return removed
}

// Clear removes every subscription and resets the live listener count.
func (b *Bus) Clear() {
	removed := b.registry.ClearAll()
	b.metrics.ResetListeners()
	observability.LogClear(b.logger, removed)
}

// Publish delivers an event to every matched listener per the tier contract
// and returns the Critical, High, and Normal results in tier order, with a
// nil slot for each failed or timed-out invocation. Low-tier listeners are
// dispatched fire-and-forget and contribute no results.
//
// Nothing a listener does (error, panic, or timeout) can surface as an
// error from Publish. With no matched listeners, Publish returns an empty
// slice.
func (b *Bus) Publish(ctx context.Context, eventName string, payload Payload) []any {
	if b.metricsOn.Load() {
		b.metrics.RecordPublish(eventName)
	}
	b.attachLogContext(eventName, payload)

	snapshot := b.registry.ExtractForEvent(eventName)
	if b.recorder != nil {
		b.recorder.RecordPublish(ctx, eventName, len(snapshot))
	}
	if len(snapshot) == 0 {
		return []any{}
	}
	observability.LogPublish(b.logger, eventName, len(snapshot))

	ctx, span := b.spans.StartPublishSpan(ctx, eventName, len(snapshot))
	defer b.spans.EndPublishSpan(span)

	done := observability.TimedOperation()
	results := b.sched.execute(ctx, eventName, snapshot, payload)
	if b.recorder != nil {
		b.recorder.RecordPublishDuration(ctx, eventName, done())
	}
	return results
}

// attachLogContext invokes the configured ambient-context hook. Best
// effort: a panicking hook is swallowed so it can never break dispatch.
func (b *Bus) attachLogContext(eventName string, payload Payload) {
	if b.logContext == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	b.logContext(map[string]any{
		"event":        eventName,
		"payload_keys": payload.Keys(),
	})
}

// handleFailure is the scheduler's failure sink: metrics, logs, tracing,
// and the optional journal. It may run on Low-tier goroutines after the
// originating Publish has returned.
func (b *Bus) handleFailure(ctx context.Context, lerr *ListenerError) {
	if b.metricsOn.Load() {
		b.metrics.RecordError(lerr.Event)
	}
	if b.recorder != nil {
		b.recorder.RecordListenerError(ctx, lerr.Event, lerr.ListenerID)
	}
	observability.LogListenerFailure(b.logger, lerr.Event, lerr.ListenerID, lerr.Priority.String(), lerr.Err)
	b.spans.AddListenerFailure(ctx, lerr.ListenerID, lerr.Err)

	if b.journal != nil {
		entry := journal.NewEntry(lerr.Event, lerr.ListenerID, lerr.Priority.String(), failureKind(lerr.Err), lerr.Err.Error())
		if jerr := b.journal.Record(ctx, entry); jerr != nil {
			observability.LogJournalError(b.logger, lerr.Event, jerr)
		}
	}
}

func failureKind(err error) journal.Kind {
	switch {
	case errors.Is(err, ErrListenerTimeout):
		return journal.KindTimeout
	case errors.Is(err, ErrListenerPanic):
		return journal.KindPanic
	default:
		return journal.KindError
	}
}

// Metrics returns an independent snapshot of the bus counters.
func (b *Bus) Metrics() MetricsSnapshot {
	return b.metrics.Snapshot()
}

// MetricsSummary returns derived totals and the error rate.
func (b *Bus) MetricsSummary() Summary {
	return b.metrics.Snapshot().Summary()
}

// EnableMetrics resumes counter recording.
func (b *Bus) EnableMetrics() {
	b.metricsOn.Store(true)
}

// DisableMetrics pauses counter recording without losing existing counts.
func (b *Bus) DisableMetrics() {
	b.metricsOn.Store(false)
}

// ListenerCount returns the number of live subscriptions.
func (b *Bus) ListenerCount() int {
	return b.registry.TotalCount()
}

// EventListenerCount returns how many listeners would receive the named
// event: exact subscribers plus matching wildcard subscribers.
func (b *Bus) EventListenerCount(eventName string) int {
	return b.registry.CountForEvent(eventName)
}

// AllEvents returns the sorted union of subscribed exact event names and
// wildcard patterns.
func (b *Bus) AllEvents() []string {
	return b.registry.EventKeys()
}

// InFlight returns the number of Low-tier tasks still running.
func (b *Bus) InFlight() int {
	return b.sched.inFlightCount()
}

// Drain blocks until all in-flight Low-tier tasks complete or ctx expires.
// Call during shutdown, after publishers have stopped.
func (b *Bus) Drain(ctx context.Context) error {
	return b.sched.drain(ctx)
}

// CriticalTimeout returns the resolved Critical-tier timeout.
func (b *Bus) CriticalTimeout() time.Duration {
	return b.sched.criticalTimeout
}

// HighTimeout returns the resolved High-tier timeout.
func (b *Bus) HighTimeout() time.Duration {
	return b.sched.highTimeout
}
