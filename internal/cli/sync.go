package cli

import (
	"context"
	"log"
)

// Sync runs one full cycle and reports the outcome.
func (a *App) Sync(ctx context.Context) error {
	if !a.online {
		printlnFn("Remote sync is not configured (set a remote DSN)")
		return nil
	}
	if !a.isLoggedIn() {
		printlnFn("Sign in first; entries recorded as guest sync after login")
		return nil
	}
	a.engine.Sync(ctx)
	a.printOutcome()
	return nil
}

// StartScheduler keeps syncing in the background for the rest of the
// session. Subsequent add commands nudge it instead of waiting for the
// timer.
func (a *App) StartScheduler(ctx context.Context) error {
	if !a.online {
		printlnFn("Remote sync is not configured (set a remote DSN)")
		return nil
	}
	if a.schedCancel != nil {
		printlnFn("Background sync already running")
		return nil
	}

	sctx, cancel := context.WithCancel(ctx)
	a.schedCancel = cancel
	go a.engine.StartScheduled(sctx, a.config.SyncInterval)

	log.Printf("background sync started (every %s)", a.config.SyncInterval)
	return nil
}

func (a *App) printOutcome() {
	if msg := a.engine.LastError(); msg != "" {
		printlnFn("Sync problems: " + msg)
		return
	}
	printlnFn(a.engine.LastMessage())
}
