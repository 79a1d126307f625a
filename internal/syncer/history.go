package syncer

import (
	"context"
	"sort"
	"time"

	"tracklite/internal/local/logs"
	"tracklite/internal/local/summaries"
	"tracklite/internal/models"
)

// DayTotal is one day of history for a category.
type DayTotal struct {
	Day   string
	Total float64
	Count int64
}

// DailyTotals returns per-day totals for (owner, category) between from and
// to inclusive, merging the two storage tiers: days that still hold raw logs
// are summed live, older days come from stored summaries. When a day has
// both (a log recorded after its summary was built), the raw sum wins, since
// summaries are rebuilt lazily and may be stale for such days.
func (e *Engine) DailyTotals(ctx context.Context, owner, category string, from, to time.Time) ([]DayTotal, error) {
	fromDay, toDay := models.DayOf(from), models.DayOf(to)

	stored, err := summaries.NewSQLiteRepository(e.db).Range(ctx, owner, category, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]DayTotal, len(stored))
	for _, s := range stored {
		byDay[s.Day] = DayTotal{Day: s.Day, Total: s.Total, Count: s.Count}
	}

	cutoff := e.now().Add(-e.retention)
	raw, err := logs.NewSQLiteRepository(e.db).Since(ctx, owner, category, cutoff)
	if err != nil {
		return nil, err
	}
	rawDays := make(map[string]DayTotal)
	for _, l := range raw {
		day := models.DayOf(l.EventTime)
		if day < fromDay || day > toDay {
			continue
		}
		t := rawDays[day]
		t.Day = day
		t.Total += l.Value
		t.Count++
		rawDays[day] = t
	}
	for day, t := range rawDays {
		byDay[day] = t
	}

	out := make([]DayTotal, 0, len(byDay))
	for _, t := range byDay {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
