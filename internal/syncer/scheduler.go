package syncer

import (
	"context"
	"time"
)

// RequestSync queues an out-of-band sync for the scheduler loop. It never
// blocks; a request while one is already queued coalesces into it.
func (e *Engine) RequestSync() {
	select {
	case e.requests <- struct{}{}:
	default:
	}
}

// StartScheduled runs sync cycles on a fixed cadence and whenever
// RequestSync fires, until ctx is cancelled. It blocks; run it on its own
// goroutine. Cycles run one at a time on this goroutine, so a timer tick
// arriving mid-cycle waits rather than overlapping.
func (e *Engine) StartScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info(ctx, "sync scheduler started", "interval", interval)
	for {
		select {
		case <-ticker.C:
			e.Sync(ctx)
		case <-e.requests:
			e.Sync(ctx)
		case <-ctx.Done():
			e.log.Info(ctx, "sync scheduler stopped")
			return
		}
	}
}
