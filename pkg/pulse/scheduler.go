package pulse

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// scheduler executes one extraction snapshot per the tier contract:
// Critical and High sequentially with per-listener timeouts, Normal
// concurrently but awaited, Low fire-and-forget.
//
// Low-tier tasks are tracked in an explicit in-flight registry so each task
// keeps a live handle until it completes, and so callers can observe or
// drain background work.
type scheduler struct {
	criticalTimeout time.Duration
	highTimeout     time.Duration

	// onFailure receives every isolated listener failure. Set by the bus;
	// must be safe to call from Low-tier goroutines after Publish returns.
	onFailure func(ctx context.Context, lerr *ListenerError)

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func newScheduler(criticalTimeout, highTimeout time.Duration) *scheduler {
	return &scheduler{
		criticalTimeout: criticalTimeout,
		highTimeout:     highTimeout,
		inflight:        make(map[string]struct{}),
	}
}

// execute dispatches a snapshot and returns the Critical, High, and Normal
// results concatenated in tier order. Failed or timed-out invocations leave
// a nil slot at their position. Low-tier results are discarded.
func (s *scheduler) execute(ctx context.Context, eventName string, snapshot []Listener, payload Payload) []any {
	var critical, high, normal, low []Listener
	for _, l := range snapshot {
		switch l.Priority {
		case Critical:
			critical = append(critical, l)
		case High:
			high = append(high, l)
		case Low:
			low = append(low, l)
		default:
			normal = append(normal, l)
		}
	}

	results := make([]any, 0, len(critical)+len(high)+len(normal))
	results = append(results, s.runSequential(ctx, eventName, critical, payload, s.criticalTimeout)...)
	results = append(results, s.runSequential(ctx, eventName, high, payload, s.highTimeout)...)
	results = append(results, s.runConcurrent(ctx, eventName, normal, payload)...)
	s.runBackground(ctx, eventName, low, payload)
	return results
}

// runSequential invokes a tier one listener at a time, in snapshot order.
// A failure or timeout never stops the rest of the tier.
func (s *scheduler) runSequential(ctx context.Context, eventName string, tier []Listener, payload Payload, timeout time.Duration) []any {
	results := make([]any, len(tier))
	for i, l := range tier {
		v, err := s.invokeWithTimeout(ctx, l, payload, timeout)
		if err != nil {
			s.fail(ctx, eventName, l, err)
			continue
		}
		results[i] = v
	}
	return results
}

// runConcurrent invokes a tier all at once and waits for every listener.
// Results keep the tier's snapshot order regardless of completion order.
func (s *scheduler) runConcurrent(ctx context.Context, eventName string, tier []Listener, payload Payload) []any {
	results := make([]any, len(tier))
	var wg sync.WaitGroup
	for i, l := range tier {
		wg.Add(1)
		go func(i int, l Listener) {
			defer wg.Done()
			v, err := invoke(ctx, l, payload)
			if err != nil {
				s.fail(ctx, eventName, l, err)
				return
			}
			results[i] = v
		}(i, l)
	}
	wg.Wait()
	return results
}

// runBackground dispatches Low-tier listeners without waiting. Each task is
// registered in the in-flight map before its goroutine starts and removed
// only when it finishes. The invocation context is detached from the
// caller's cancellation so background work survives the publish returning.
func (s *scheduler) runBackground(ctx context.Context, eventName string, tier []Listener, payload Payload) {
	if len(tier) == 0 {
		return
	}
	bgCtx := context.WithoutCancel(ctx)
	for _, l := range tier {
		handle := "task-" + uuid.New().String()[:8]

		s.mu.Lock()
		s.inflight[handle] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)

		go func(handle string, l Listener) {
			defer func() {
				s.mu.Lock()
				delete(s.inflight, handle)
				s.mu.Unlock()
				s.wg.Done()
			}()
			if _, err := invoke(bgCtx, l, payload); err != nil {
				s.fail(bgCtx, eventName, l, err)
			}
		}(handle, l)
	}
}

// invokeWithTimeout bounds a single invocation. On timeout the listener's
// goroutine is abandoned with a cancelled context; it cannot be killed, so
// long-running callbacks should watch ctx.Done.
func (s *scheduler) invokeWithTimeout(ctx context.Context, l Listener, payload Payload, timeout time.Duration) (any, error) {
	if timeout <= 0 {
		return invoke(ctx, l, payload)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := invoke(tctx, l, payload)
		done <- outcome{value: v, err: err}
	}()

	select {
	case o := <-done:
		// A callback that surfaces the expired deadline raced the timeout
		// branch; classify it as a timeout either way.
		if o.err != nil && tctx.Err() != nil && errors.Is(o.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrListenerTimeout, timeout)
		}
		return o.value, o.err
	case <-tctx.Done():
		return nil, fmt.Errorf("%w after %s", ErrListenerTimeout, timeout)
	}
}

// invoke runs one callback with panic recovery. A panic is converted to an
// error carrying the stack trace so it follows the normal isolation path.
func invoke(ctx context.Context, l Listener, payload Payload) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v\n%s", ErrListenerPanic, r, debug.Stack())
		}
	}()
	return l.Callback(ctx, payload)
}

func (s *scheduler) fail(ctx context.Context, eventName string, l Listener, err error) {
	if s.onFailure == nil {
		return
	}
	s.onFailure(ctx, &ListenerError{
		Event:      eventName,
		ListenerID: l.ID,
		Priority:   l.Priority,
		Err:        err,
	})
}

// inFlightCount returns the number of Low-tier tasks still running.
func (s *scheduler) inFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// drain blocks until all in-flight Low-tier tasks complete or ctx expires.
// Intended for shutdown, after publishers have stopped.
func (s *scheduler) drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
