package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"tracklite/internal/local/goals"
)

// Totals prints per-day totals for a category over the last N days,
// annotated with the goal when one is set. Works offline: recent days are
// summed from raw entries, older days come from stored aggregates.
func (a *App) Totals(ctx context.Context) error {
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	daysStr, err := GetSimpleText(a.reader, "Days back (default 7)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	days := 7
	if daysStr != "" {
		days, err = strconv.Atoi(daysStr)
		if err != nil || days <= 0 {
			printlnFn("Not a valid number of days: " + daysStr)
			return nil
		}
	}

	owner := a.currentOwner()
	now := time.Now()
	totals, err := a.engine.DailyTotals(ctx, owner, category, now.AddDate(0, 0, -days+1), now)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if len(totals) == 0 {
		printlnFn("No entries for " + category)
		return nil
	}

	var target float64
	var unit string
	if g, err := a.store.Goals.Get(ctx, owner, category); err == nil {
		target, unit = g.Target, g.Unit
	} else if !errors.Is(err, goals.ErrNotFound) {
		log.Printf("error: %v", err)
		return err
	}

	for _, t := range totals {
		line := fmt.Sprintf("%s  %10g  (%d entries)", t.Day, t.Total, t.Count)
		if target > 0 {
			line += fmt.Sprintf("  goal %g %s", target, unit)
			if t.Total >= target {
				line += " reached"
			}
		}
		printlnFn(line)
	}
	return nil
}
