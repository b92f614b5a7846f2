// Package journal records isolated listener failures for later inspection.
//
// The bus swallows every listener failure by design: a Publish caller only
// sees a nil result slot. A Journal preserves the detail that the result
// list cannot carry: which listener failed, on which event, and why.
// Entries are diagnostics only; events themselves are never persisted and
// delivery gains no durability from journaling.
package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies how a listener invocation failed.
type Kind string

// Failure kinds.
const (
	KindError   Kind = "error"   // callback returned an error
	KindTimeout Kind = "timeout" // exceeded its tier timeout
	KindPanic   Kind = "panic"   // callback panicked
)

// Sentinel errors.
var (
	// ErrClosed is returned by operations on a closed journal.
	ErrClosed = errors.New("journal: closed")
)

// Entry is one recorded listener failure.
type Entry struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	ListenerID string    `json:"listener_id"`
	Priority   string    `json:"priority"`
	Kind       Kind      `json:"kind"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntry creates an entry with a fresh id and timestamp.
func NewEntry(event, listenerID, priority string, kind Kind, reason string) *Entry {
	return &Entry{
		ID:         "inv-" + uuid.New().String()[:8],
		Event:      event,
		ListenerID: listenerID,
		Priority:   priority,
		Kind:       kind,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// Journal stores listener failure entries.
//
// Record may be called from background goroutines after the publish that
// produced the failure has returned, so implementations must be safe for
// concurrent use.
type Journal interface {
	// Record stores one failure entry.
	Record(ctx context.Context, e *Entry) error

	// List returns the most recent entries, newest first, up to limit.
	// A limit <= 0 returns everything.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// CountByEvent returns failure counts grouped by event name.
	CountByEvent(ctx context.Context) (map[string]int, error)

	// Purge removes all entries.
	Purge(ctx context.Context) error

	// Close releases the journal's resources.
	Close() error
}

// Memory is an in-memory Journal bounded by MaxSize.
// Suitable for tests and single-instance deployments.
type Memory struct {
	mu      sync.Mutex
	entries []*Entry
	maxSize int
	closed  bool
}

// DefaultMaxSize bounds an in-memory journal when no size is given.
const DefaultMaxSize = 10000

// NewMemory creates an in-memory journal holding at most maxSize entries;
// the oldest entries are dropped once the bound is reached.
// A maxSize <= 0 uses DefaultMaxSize.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Memory{maxSize: maxSize}
}

// Record implements Journal.
func (m *Memory) Record(_ context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if len(m.entries) >= m.maxSize {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, e)
	return nil
}

// List implements Journal.
func (m *Memory) List(_ context.Context, limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// CountByEvent implements Journal.
func (m *Memory) CountByEvent(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	counts := make(map[string]int)
	for _, e := range m.entries {
		counts[e.Event]++
	}
	return counts, nil
}

// Purge implements Journal.
func (m *Memory) Purge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.entries = nil
	return nil
}

// Close implements Journal.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
