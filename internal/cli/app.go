// Package cli implements the interactive terminal client: a small REPL over
// the local store and the sync engine.
package cli

import (
	"bufio"
	"context"
	"log"
	"log/slog"
	"os"

	"tracklite/internal/config"
	"tracklite/internal/identity"
	"tracklite/internal/local"
	"tracklite/internal/logging"
	"tracklite/internal/models"
	"tracklite/internal/remote"
	"tracklite/internal/syncer"
)

// App wires the local store, the sync engine and the session together for
// interactive use. Without a remote DSN the app works purely offline:
// recording and totals still work, sync commands report the missing remote.
type App struct {
	config   *config.Config
	store    *local.Store
	tokens   *identity.TokenProvider
	engine   *syncer.Engine
	migrator *syncer.Migrator
	log      logging.Logger
	reader   *bufio.Reader
	online   bool

	// schedCancel stops a background scheduler started by the run command.
	schedCancel context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	store, err := local.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	tokens := identity.NewTokenProvider(cfg.SessionTokenPath, []byte(cfg.SessionSecret))

	app := &App{
		config:   cfg,
		store:    store,
		tokens:   tokens,
		migrator: syncer.NewMigrator(store.DB, logger),
		log:      logger,
		reader:   bufio.NewReader(os.Stdin),
	}

	opts := syncer.Options{
		RetentionWindow: cfg.RetentionWindow,
		PageSize:        cfg.PageSize,
	}
	if cfg.RemoteDSN != "" {
		rs, err := remote.OpenPostgres(ctx, cfg.RemoteDSN)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		app.engine = syncer.New(store.DB, remote.WithRetry(rs, remote.DefaultRetryOptions()), tokens, logger, opts)
		app.online = true
	} else {
		// local-only engine: totals still work, nothing is synced
		app.engine = syncer.New(store.DB, remote.NewMemoryStore(), tokens, logger, opts)
		log.Println("no remote configured, running offline")
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	runREPL(ctx, a, a.statusLine, bufio.NewScanner(os.Stdin))
}

func (a *App) Close() {
	if a.schedCancel != nil {
		a.schedCancel()
	}
	_ = a.store.Close()
}

// currentOwner resolves the identity every recorded row is attributed to:
// the signed-in owner, or the guest sentinel before sign-in.
func (a *App) currentOwner() string {
	if owner, ok := a.tokens.CurrentOwner(); ok {
		return owner
	}
	return models.GuestOwner
}

func (a *App) isLoggedIn() bool {
	_, ok := a.tokens.CurrentOwner()
	return ok
}

func (a *App) statusLine() string {
	if owner, ok := a.tokens.CurrentOwner(); ok {
		return "signed in as " + owner
	}
	return "guest"
}
