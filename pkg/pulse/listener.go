package pulse

import (
	"context"
	"fmt"
	"reflect"
	"runtime"

	"github.com/google/uuid"
)

// Priority controls how a listener is scheduled during a publish call.
// Lower values run earlier and more sequentially.
type Priority int

// Priority tiers, ordered from most to least strict.
const (
	// Critical listeners run one at a time, in order, with a timeout.
	Critical Priority = 0

	// High listeners run one at a time after Critical, with a timeout.
	High Priority = 10

	// Normal listeners run concurrently; Publish waits for all of them.
	Normal Priority = 50

	// Low listeners are fire-and-forget; Publish does not wait.
	Low Priority = 100
)

// String returns the tier name.
func (p Priority) String() string {
	switch p {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Payload carries event data as string-keyed values.
// The bus never mutates a payload; listeners share the same map.
type Payload map[string]any

// Keys returns the payload's keys in unspecified order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}

// Callback is the listener contract: one payload in, one result (or error)
// out. The context carries the per-invocation deadline for Critical and High
// listeners; callbacks that block should respect its cancellation.
type Callback func(ctx context.Context, payload Payload) (any, error)

// SyncCallback adapts a plain blocking function to the Callback contract.
// Useful for listeners that neither fail nor care about cancellation.
func SyncCallback(fn func(payload Payload) any) Callback {
	if fn == nil {
		return nil
	}
	return func(_ context.Context, payload Payload) (any, error) {
		return fn(payload), nil
	}
}

// Listener is one immutable subscription: a callback plus its scheduling
// metadata. Listeners are copied by value into extraction snapshots.
type Listener struct {
	// ID uniquely identifies the listener within its event name or pattern.
	ID string

	// Priority selects the scheduling tier.
	Priority Priority

	// Once removes the listener after its first matching extraction.
	Once bool

	// Callback is invoked with the published payload.
	Callback Callback
}

// deriveListenerID builds a deterministic identifier from the callback's
// fully-qualified function name and the event key it registers under, so
// re-registering the same named function for the same event collides as a
// duplicate. Callbacks with no resolvable name (rare; e.g. funcs created via
// reflection) get a random identifier instead.
func deriveListenerID(cb Callback, eventKey string) string {
	if fn := runtime.FuncForPC(reflect.ValueOf(cb).Pointer()); fn != nil && fn.Name() != "" {
		return fn.Name() + "@" + eventKey
	}
	return "listener-" + uuid.New().String()[:8]
}
