package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestNoopMetrics verifies the no-op recorder never panics.
func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	m.RecordPublish(ctx, "evt", 3)
	m.RecordListenerError(ctx, "evt", "id")
	m.RecordPublishDuration(ctx, "evt", time.Second)
}

// TestNoopSpanManager verifies the no-op span manager never panics and
// leaves the context unchanged.
func TestNoopSpanManager(t *testing.T) {
	m := NoopSpanManager{}
	ctx := context.Background()

	newCtx, span := m.StartPublishSpan(ctx, "evt", 2)
	if newCtx != ctx {
		t.Error("expected context unchanged")
	}
	m.AddListenerFailure(newCtx, "id", errors.New("boom"))
	m.EndPublishSpan(span)
	m.EndPublishSpan(nil)
}
