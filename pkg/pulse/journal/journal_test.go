package journal_test

import (
	"context"
	"testing"

	"github.com/randalmurphal/pulse/pkg/pulse/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(event, listenerID string, kind journal.Kind) *journal.Entry {
	return journal.NewEntry(event, listenerID, "normal", kind, "boom")
}

func TestNewEntry(t *testing.T) {
	e := journal.NewEntry("player.died", "handler-1", "critical", journal.KindTimeout, "deadline exceeded")

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "player.died", e.Event)
	assert.Equal(t, "handler-1", e.ListenerID)
	assert.Equal(t, "critical", e.Priority)
	assert.Equal(t, journal.KindTimeout, e.Kind)
	assert.False(t, e.OccurredAt.IsZero())

	// Fresh id per entry.
	assert.NotEqual(t, e.ID, journal.NewEntry("x", "y", "low", journal.KindError, "z").ID)
}

func TestMemoryRecordAndList(t *testing.T) {
	j := journal.NewMemory(0)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, entry("a", "l1", journal.KindError)))
	require.NoError(t, j.Record(ctx, entry("a", "l2", journal.KindPanic)))
	require.NoError(t, j.Record(ctx, entry("b", "l3", journal.KindTimeout)))

	// Newest first.
	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "l3", all[0].ListenerID)
	assert.Equal(t, "l1", all[2].ListenerID)

	// Limit.
	two, err := j.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "l3", two[0].ListenerID)
}

func TestMemoryCountByEvent(t *testing.T) {
	j := journal.NewMemory(0)
	ctx := context.Background()

	j.Record(ctx, entry("a", "l1", journal.KindError))
	j.Record(ctx, entry("a", "l2", journal.KindError))
	j.Record(ctx, entry("b", "l3", journal.KindError))

	counts, err := j.CountByEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, counts)
}

func TestMemoryBounded(t *testing.T) {
	j := journal.NewMemory(2)
	ctx := context.Background()

	j.Record(ctx, entry("a", "l1", journal.KindError))
	j.Record(ctx, entry("a", "l2", journal.KindError))
	j.Record(ctx, entry("a", "l3", journal.KindError))

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Oldest entry was evicted.
	assert.Equal(t, "l3", all[0].ListenerID)
	assert.Equal(t, "l2", all[1].ListenerID)
}

func TestMemoryPurge(t *testing.T) {
	j := journal.NewMemory(0)
	ctx := context.Background()

	j.Record(ctx, entry("a", "l1", journal.KindError))
	require.NoError(t, j.Purge(ctx))

	all, err := j.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryClosed(t *testing.T) {
	j := journal.NewMemory(0)
	ctx := context.Background()

	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Record(ctx, entry("a", "l1", journal.KindError)), journal.ErrClosed)
	_, err := j.List(ctx, 0)
	assert.ErrorIs(t, err, journal.ErrClosed)
	_, err = j.CountByEvent(ctx)
	assert.ErrorIs(t, err, journal.ErrClosed)
	assert.ErrorIs(t, j.Purge(ctx), journal.ErrClosed)
}
