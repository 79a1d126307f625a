package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracklite/internal/models"
	"tracklite/internal/remote"
)

// A remote log must survive pruning until a summary covering newer days has
// been confirmed, no matter how old the log is.
func TestPrune_NothingConfirmedNothingPruned(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	eng, store := newTestEngine(t, testOwner, rs)

	l := models.NewEventLog(testOwner, "water", 250, "ml", time.Now().Add(-120*24*time.Hour), "")
	require.NoError(t, store.Logs.Insert(ctx, l))
	n, err := eng.pushLogs(ctx, testOwner)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	pruned, err := eng.prune(ctx, testOwner)
	require.NoError(t, err)
	assert.Zero(t, pruned)
	assert.Equal(t, 1, rs.LogCount(testOwner))
}

func TestPrune_ConfirmedSummaryUnlocksPruning(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	eng, store := newTestEngine(t, testOwner, rs)

	now := time.Now().UTC()
	eng.now = func() time.Time { return now }

	older := now.Add(-120 * 24 * time.Hour)
	newer := now.Add(-110 * 24 * time.Hour)
	require.NoError(t, store.Logs.Insert(ctx, models.NewEventLog(testOwner, "water", 250, "ml", older, "")))
	require.NoError(t, store.Logs.Insert(ctx, models.NewEventLog(testOwner, "water", 300, "ml", newer, "")))
	require.NoError(t, store.Logs.Insert(ctx, models.NewEventLog(testOwner, "water", 100, "ml", now, "")))

	// full cycle: upload, consolidate, confirm summaries, then prune
	require.NoError(t, eng.Push(ctx))

	// only the day strictly before the latest confirmed summary is pruned
	assert.Equal(t, 2, rs.LogCount(testOwner))

	sums, err := store.Summaries.Range(ctx, testOwner, "water", models.DayOf(older), models.DayOf(newer))
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.False(t, sums[0].Dirty())
	assert.False(t, sums[1].Dirty())
}

func TestPrune_CappedByRetentionBoundary(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	eng, store := newTestEngine(t, testOwner, rs)

	now := time.Now().UTC()
	eng.now = func() time.Time { return now }

	// a confirmed summary for a recent day must not allow pruning of logs
	// that are still inside the retention window
	recent := now.Add(-24 * time.Hour)
	require.NoError(t, store.Logs.Insert(ctx, models.NewEventLog(testOwner, "water", 250, "ml", recent, "")))
	n, err := eng.pushLogs(ctx, testOwner)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	s := &models.DailySummary{
		ID:       models.SummaryID(testOwner, "water", models.DayOf(now)),
		Owner:    testOwner,
		Category: "water",
		Day:      models.DayOf(now),
		Total:    250,
		Count:    1,
		Derived:  true,
	}
	require.NoError(t, store.Summaries.Insert(ctx, s))
	require.NoError(t, store.Summaries.MarkSynced(ctx, []string{s.ID}, now))

	pruned, err := eng.prune(ctx, testOwner)
	require.NoError(t, err)
	assert.Zero(t, pruned)
	assert.Equal(t, 1, rs.LogCount(testOwner))
}

func TestPrune_HeldBackByUnconfirmedSummary(t *testing.T) {
	ctx := context.Background()
	rs := remote.NewMemoryStore()
	eng, store := newTestEngine(t, testOwner, rs)

	now := time.Now().UTC()
	eng.now = func() time.Time { return now }

	earlier := now.Add(-120 * 24 * time.Hour)
	later := now.Add(-110 * 24 * time.Hour)

	require.NoError(t, store.Logs.Insert(ctx, models.NewEventLog(testOwner, "water", 250, "ml", earlier, "")))
	n, err := eng.pushLogs(ctx, testOwner)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// the later day is confirmed but the earlier one is still pending
	unconfirmed := &models.DailySummary{
		ID:       models.SummaryID(testOwner, "water", models.DayOf(earlier)),
		Owner:    testOwner,
		Category: "water",
		Day:      models.DayOf(earlier),
		Total:    250,
		Count:    1,
		Derived:  true,
	}
	require.NoError(t, store.Summaries.Insert(ctx, unconfirmed))

	confirmed := &models.DailySummary{
		ID:       models.SummaryID(testOwner, "steps", models.DayOf(later)),
		Owner:    testOwner,
		Category: "steps",
		Day:      models.DayOf(later),
		Total:    4000,
		Count:    1,
		Derived:  true,
	}
	require.NoError(t, store.Summaries.Insert(ctx, confirmed))
	require.NoError(t, store.Summaries.MarkSynced(ctx, []string{confirmed.ID}, now))

	pruned, err := eng.prune(ctx, testOwner)
	require.NoError(t, err)
	assert.Zero(t, pruned, "pruning never passes a pending summary day")
	assert.Equal(t, 1, rs.LogCount(testOwner))
}
