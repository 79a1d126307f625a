package syncer

import (
	"context"
	"time"

	"tracklite/internal/local/logs"
	"tracklite/internal/local/summaries"
	"tracklite/internal/models"
)

// consolidate rolls logs older than the retention window up into per-day,
// per-category summaries. Summary ids are deterministic in
// (owner, category, day), so two devices consolidating the same period
// produce the same rows and converge through upserts. Days that already
// have a summary are left alone, which makes the whole step idempotent.
// Raw logs are not removed here; only the remote pruner discards them.
//
// Only whole days are rolled up: the cutoff is truncated to the UTC day
// boundary, so the day the retention instant falls on keeps its raw logs
// until it has fully aged out. Bucketing that day early would freeze a
// partial total behind the existence check.
func (e *Engine) consolidate(ctx context.Context, owner string) (int, error) {
	cutoff, err := time.ParseInLocation(models.DayFormat, models.DayOf(e.now().Add(-e.retention)), time.UTC)
	if err != nil {
		return 0, err
	}
	aged, err := logs.NewSQLiteRepository(e.db).OlderThan(ctx, owner, cutoff)
	if err != nil {
		return 0, err
	}
	if len(aged) == 0 {
		return 0, nil
	}

	type bucket struct {
		category string
		day      string
	}
	type agg struct {
		total float64
		count int64
	}
	totals := make(map[bucket]*agg)
	for _, l := range aged {
		b := bucket{category: l.Category, day: models.DayOf(l.EventTime)}
		a := totals[b]
		if a == nil {
			a = &agg{}
			totals[b] = a
		}
		a.total += l.Value
		a.count++
	}

	repo := summaries.NewSQLiteRepository(e.db)
	created := 0
	for b, a := range totals {
		exists, err := repo.Exists(ctx, owner, b.category, b.day)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		s := &models.DailySummary{
			ID:       models.SummaryID(owner, b.category, b.day),
			Owner:    owner,
			Category: b.category,
			Day:      b.day,
			Total:    a.total,
			Count:    a.count,
			Derived:  true,
		}
		if err := repo.Insert(ctx, s); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
