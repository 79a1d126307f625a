package syncer

import (
	"context"
	"errors"
	"fmt"

	"tracklite/internal/dbx"
	"tracklite/internal/local/goals"
	"tracklite/internal/local/logs"
	"tracklite/internal/local/preferences"
	"tracklite/internal/local/summaries"
	"tracklite/internal/mapper"
	"tracklite/internal/remote"
)

// Push uploads every dirty record, consolidates aged logs into daily
// summaries, uploads those, and finally prunes confirmed-aged logs from the
// backend. Entity families are isolated: a failing family is logged and
// folded into the returned error, but the remaining families still run.
// No-op when not signed in.
func (e *Engine) Push(ctx context.Context) error {
	owner, ok := e.identity.CurrentOwner()
	if !ok {
		return nil
	}

	e.pushMu.Lock()
	defer e.pushMu.Unlock()

	var errs []error
	fail := func(step string, err error) {
		e.log.Error(ctx, "push step failed", "step", step, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", step, err))
	}

	if n, err := e.pushLogs(ctx, owner); err != nil {
		fail("logs", err)
	} else if n > 0 {
		e.log.Debug(ctx, "pushed logs", "count", n)
	}

	if n, err := e.pushGoals(ctx, owner); err != nil {
		fail("goals", err)
	} else if n > 0 {
		e.log.Debug(ctx, "pushed goals", "count", n)
	}

	if err := e.pushPreferences(ctx, owner); err != nil {
		fail("preferences", err)
	}

	if n, err := e.consolidate(ctx, owner); err != nil {
		fail("consolidation", err)
	} else if n > 0 {
		e.log.Info(ctx, "consolidated aged logs", "summaries", n)
	}

	if n, err := e.pushSummaries(ctx, owner); err != nil {
		fail("summaries", err)
	} else if n > 0 {
		e.log.Debug(ctx, "pushed summaries", "count", n)
	}

	if n, err := e.prune(ctx, owner); err != nil {
		fail("prune", err)
	} else if n > 0 {
		e.log.Info(ctx, "pruned remote logs", "count", n)
	}

	err := errors.Join(errs...)
	e.setOutcome(err, "push finished")
	return err
}

func (e *Engine) pushLogs(ctx context.Context, owner string) (int, error) {
	dirty, err := logs.NewSQLiteRepository(e.db).Dirty(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(dirty) == 0 {
		return 0, nil
	}

	recs := make([]remote.LogRecord, 0, len(dirty))
	ids := make([]string, 0, len(dirty))
	for _, l := range dirty {
		rec, err := mapper.LogToRemote(l)
		if err != nil {
			e.log.Warn(ctx, "skipping unmappable log", "id", l.ID, "error", err)
			continue
		}
		recs = append(recs, rec)
		ids = append(ids, l.ID)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	accepted, err := e.remote.UpsertLogs(ctx, recs)
	if err != nil {
		return 0, err
	}
	if accepted < 1 {
		return 0, nil
	}

	// Marked synced only after the backend confirmed the batch; a crash in
	// between re-pushes the same idempotent upserts next cycle.
	at := e.now()
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return logs.NewSQLiteRepository(tx).MarkSynced(ctx, ids, at)
	})
	return len(recs), err
}

func (e *Engine) pushGoals(ctx context.Context, owner string) (int, error) {
	dirty, err := goals.NewSQLiteRepository(e.db).Dirty(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(dirty) == 0 {
		return 0, nil
	}

	recs := make([]remote.GoalRecord, 0, len(dirty))
	ids := make([]string, 0, len(dirty))
	for _, g := range dirty {
		rec, err := mapper.GoalToRemote(g)
		if err != nil {
			e.log.Warn(ctx, "skipping unmappable goal", "id", g.ID, "error", err)
			continue
		}
		recs = append(recs, rec)
		ids = append(ids, g.ID)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	accepted, err := e.remote.UpsertGoals(ctx, recs)
	if err != nil {
		return 0, err
	}
	if accepted < 1 {
		return 0, nil
	}

	at := e.now()
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return goals.NewSQLiteRepository(tx).MarkSynced(ctx, ids, at)
	})
	return len(recs), err
}

// pushPreferences resolves the singleton settings record with
// last-writer-wins before uploading: when the remote copy is decisively
// newer, the local edit is discarded and replaced instead of pushed.
func (e *Engine) pushPreferences(ctx context.Context, owner string) error {
	repo := preferences.NewSQLiteRepository(e.db)
	p, err := repo.Get(ctx, owner)
	if errors.Is(err, preferences.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !p.Dirty() {
		return nil
	}

	remoteAt, err := e.remote.PreferencesUpdatedAt(ctx, owner)
	if err != nil {
		return err
	}
	if remoteWins(p.UpdatedAt, remoteAt) {
		full, err := e.remote.Preferences(ctx, owner)
		if err != nil {
			return err
		}
		e.log.Info(ctx, "remote preferences newer, replacing local copy",
			"local", p.UpdatedAt, "remote", *remoteAt)
		return repo.Apply(ctx, mapper.PreferencesFromRemote(*full, e.now()))
	}

	rec, err := mapper.PreferencesToRemote(p)
	if err != nil {
		e.log.Warn(ctx, "skipping unmappable preferences", "owner", owner, "error", err)
		return nil
	}
	if err := e.remote.UpsertPreferences(ctx, rec); err != nil {
		return err
	}
	return repo.MarkSynced(ctx, owner, e.now())
}

func (e *Engine) pushSummaries(ctx context.Context, owner string) (int, error) {
	dirty, err := summaries.NewSQLiteRepository(e.db).Dirty(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(dirty) == 0 {
		return 0, nil
	}

	recs := make([]remote.SummaryRecord, 0, len(dirty))
	ids := make([]string, 0, len(dirty))
	for _, s := range dirty {
		rec, err := mapper.SummaryToRemote(s)
		if err != nil {
			e.log.Warn(ctx, "skipping unmappable summary", "id", s.ID, "error", err)
			continue
		}
		recs = append(recs, rec)
		ids = append(ids, s.ID)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	accepted, err := e.remote.UpsertSummaries(ctx, recs)
	if err != nil {
		return 0, err
	}
	if accepted < 1 {
		return 0, nil
	}

	at := e.now()
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return summaries.NewSQLiteRepository(tx).MarkSynced(ctx, ids, at)
	})
	return len(recs), err
}
