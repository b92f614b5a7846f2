package pulse

import "sync"

// Metrics tracks bus activity: publish counts and error counts per event
// name, plus the live listener count. All methods are safe for concurrent
// use, including updates arriving from Low-tier tasks after their publish
// call has already returned.
type Metrics struct {
	mu        sync.Mutex
	publishes map[string]int64
	errors    map[string]int64
	listeners int64
}

// NewMetrics creates a zeroed recorder.
func NewMetrics() *Metrics {
	return &Metrics{
		publishes: make(map[string]int64),
		errors:    make(map[string]int64),
	}
}

// RecordPublish counts one publish of the named event.
func (m *Metrics) RecordPublish(eventName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishes[eventName]++
}

// RecordError counts one isolated listener failure for the named event.
func (m *Metrics) RecordError(eventName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[eventName]++
}

// ListenerAdded increments the live listener count.
func (m *Metrics) ListenerAdded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners++
}

// ListenerRemoved decrements the live listener count, flooring at zero.
func (m *Metrics) ListenerRemoved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listeners > 0 {
		m.listeners--
	}
}

// ResetListeners zeroes the live listener count.
func (m *Metrics) ResetListeners() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = 0
}

// Snapshot returns an independent point-in-time copy of the counters.
// Mutating the recorder afterwards does not affect the snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Publishes: make(map[string]int64, len(m.publishes)),
		Errors:    make(map[string]int64, len(m.errors)),
		Listeners: m.listeners,
	}
	for k, v := range m.publishes {
		snap.Publishes[k] = v
	}
	for k, v := range m.errors {
		snap.Errors[k] = v
	}
	return snap
}

// MetricsSnapshot is an immutable point-in-time copy of the bus counters.
type MetricsSnapshot struct {
	// Publishes maps event name to how many times it was published.
	Publishes map[string]int64

	// Errors maps event name to how many listener failures it produced.
	Errors map[string]int64

	// Listeners is the live subscription count at snapshot time.
	Listeners int64
}

// Summary derives aggregate figures from a snapshot.
type Summary struct {
	TotalEvents int64            `json:"total_events"`
	TotalErrors int64            `json:"total_errors"`
	ErrorRate   float64          `json:"error_rate"` // percent
	Publishes   map[string]int64 `json:"publishes"`
	Errors      map[string]int64 `json:"errors"`
	Listeners   int64            `json:"listeners"`
}

// Summary computes totals and the error rate
// (errors / max(1, events) * 100).
func (s MetricsSnapshot) Summary() Summary {
	var events, errs int64
	for _, v := range s.Publishes {
		events += v
	}
	for _, v := range s.Errors {
		errs += v
	}

	denom := events
	if denom < 1 {
		denom = 1
	}
	return Summary{
		TotalEvents: events,
		TotalErrors: errs,
		ErrorRate:   float64(errs) / float64(denom) * 100,
		Publishes:   s.Publishes,
		Errors:      s.Errors,
		Listeners:   s.Listeners,
	}
}
