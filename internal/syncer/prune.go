package syncer

import (
	"context"
	"time"

	"tracklite/internal/local/summaries"
	"tracklite/internal/models"
)

// prune asks the backend to drop logs whose day is fully covered by a
// confirmed-synced summary. The cutoff is the earlier of the retention
// boundary and the latest synced summary day, further capped so it never
// passes a summary that is still awaiting confirmation. When no summary has
// ever been confirmed, nothing is pruned: losing an aged log to a prune
// that outran consolidation is unrecoverable, skipping a cycle is not.
func (e *Engine) prune(ctx context.Context, owner string) (int64, error) {
	repo := summaries.NewSQLiteRepository(e.db)

	latest, err := repo.LatestSyncedDay(ctx, owner)
	if err != nil {
		return 0, err
	}
	if latest == "" {
		e.log.Debug(ctx, "prune skipped: no confirmed summaries", "owner", owner)
		return 0, nil
	}

	// DayFormat strings order the same way the dates do.
	safeDay := models.DayOf(e.now().Add(-e.retention))
	if latest < safeDay {
		safeDay = latest
	}
	earliest, err := repo.EarliestUnsyncedDay(ctx, owner)
	if err != nil {
		return 0, err
	}
	if earliest != "" && earliest < safeDay {
		safeDay = earliest
	}

	cutoff, err := time.ParseInLocation(models.DayFormat, safeDay, time.UTC)
	if err != nil {
		return 0, err
	}
	// Deletes strictly before midnight of safeDay, so safeDay itself keeps
	// its logs.
	return e.remote.DeleteLogsBefore(ctx, owner, cutoff)
}
