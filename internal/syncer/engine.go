// Package syncer orchestrates the synchronization cycle between the local
// device store and the shared backend: push, consolidation, retention
// pruning and pull. All entry points fail closed (no-op) when no owner is
// signed in, and per-entity-family failures never block the other families.
package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tracklite/internal/identity"
	"tracklite/internal/local/metadata"
	"tracklite/internal/logging"
	"tracklite/internal/remote"
)

// lastSyncKey is the metadata name recording the end of the last full cycle.
const lastSyncKey = "last_sync_at"

// Options tune the engine; zero values fall back to defaults.
type Options struct {
	// RetentionWindow is the age past which raw logs are rolled up into
	// daily summaries and become prunable remotely. Default 90 days.
	RetentionWindow time.Duration
	// PageSize is the pull read window. Default remote.DefaultPageSize.
	PageSize int
}

// Engine runs sync cycles. Safe for concurrent use: the push path is
// single-flight per engine, every multi-row local mutation runs in one
// transaction, and remote writes are idempotent upserts.
type Engine struct {
	db       *sql.DB
	remote   remote.Store
	identity identity.Provider
	log      logging.Logger

	retention time.Duration
	pageSize  int

	// pushMu keeps concurrent triggers (timer, manual save, sign-in) from
	// duplicating network traffic. Correctness does not depend on it.
	pushMu sync.Mutex

	requests chan struct{}

	mu      sync.Mutex
	lastErr string
	lastMsg string

	// now is a test seam.
	now func() time.Time
}

func New(db *sql.DB, rs remote.Store, id identity.Provider, log logging.Logger, opts Options) *Engine {
	if opts.RetentionWindow <= 0 {
		opts.RetentionWindow = 90 * 24 * time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = remote.DefaultPageSize
	}
	return &Engine{
		db:        db,
		remote:    rs,
		identity:  id,
		log:       log,
		retention: opts.RetentionWindow,
		pageSize:  opts.PageSize,
		requests:  make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Sync runs one full cycle: push (with consolidation and pruning), then
// pull. It never returns an error; failures are recorded and readable via
// LastError so callers can fire-and-forget.
func (e *Engine) Sync(ctx context.Context) {
	owner, ok := e.identity.CurrentOwner()
	if !ok {
		e.setOutcome(nil, "sync skipped: not signed in")
		return
	}

	start := e.now()

	pushErr := e.Push(ctx)
	merged, pullErr := e.Pull(ctx)

	err := errors.Join(pushErr, pullErr)
	msg := fmt.Sprintf("sync finished: pulled %d rows in %s", merged, e.now().Sub(start).Round(time.Millisecond))
	e.setOutcome(err, msg)

	if err == nil {
		meta := metadata.NewSQLiteRepository(e.db)
		if mErr := meta.Set(ctx, lastSyncKey, strconv.FormatInt(e.now().UnixMilli(), 10)); mErr != nil {
			e.log.Warn(ctx, "failed to record last sync time", "error", mErr)
		}
	}

	e.log.Info(ctx, "sync cycle done", "owner", owner, "pulled", merged, "error", errString(err))
}

// LastError returns a human-readable description of the most recent
// failure, or "" when the last operation succeeded.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// LastMessage returns a short description of the most recent outcome.
func (e *Engine) LastMessage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastMsg
}

func (e *Engine) setOutcome(err error, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = errString(err)
	e.lastMsg = msg
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
