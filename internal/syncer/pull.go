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

// Pull downloads the owner's remote state and merges it into the local
// store, returning the number of rows merged. Logs and summaries are read
// in pages; each page is applied in its own transaction before the next is
// fetched, so an interrupted pull leaves complete pages behind. Like Push,
// entity families fail independently. No-op when not signed in.
func (e *Engine) Pull(ctx context.Context) (int, error) {
	owner, ok := e.identity.CurrentOwner()
	if !ok {
		return 0, nil
	}

	var errs []error
	total := 0
	fail := func(step string, err error) {
		e.log.Error(ctx, "pull step failed", "step", step, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", step, err))
	}

	if n, err := e.pullLogs(ctx, owner); err != nil {
		total += n
		fail("logs", err)
	} else {
		total += n
	}

	if n, err := e.pullSummaries(ctx, owner); err != nil {
		total += n
		fail("summaries", err)
	} else {
		total += n
	}

	if n, err := e.pullGoals(ctx, owner); err != nil {
		fail("goals", err)
	} else {
		total += n
	}

	if n, err := e.pullPreferences(ctx, owner); err != nil {
		fail("preferences", err)
	} else {
		total += n
	}

	err := errors.Join(errs...)
	e.setOutcome(err, fmt.Sprintf("pull finished: %d rows", total))
	return total, err
}

func (e *Engine) pullLogs(ctx context.Context, owner string) (int, error) {
	total := 0
	for offset := 0; ; offset += e.pageSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		page, err := e.remote.Logs(ctx, owner, remote.Page{Limit: e.pageSize, Offset: offset})
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}

		at := e.now()
		err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := logs.NewSQLiteRepository(tx)
			for _, rec := range page {
				if err := repo.Upsert(ctx, mapper.LogFromRemote(rec, at)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(page)

		// A short page means the window is exhausted.
		if len(page) < e.pageSize {
			return total, nil
		}
	}
}

func (e *Engine) pullSummaries(ctx context.Context, owner string) (int, error) {
	total := 0
	for offset := 0; ; offset += e.pageSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		page, err := e.remote.Summaries(ctx, owner, remote.Page{Limit: e.pageSize, Offset: offset})
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}

		at := e.now()
		err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := summaries.NewSQLiteRepository(tx)
			for _, rec := range page {
				if err := repo.Upsert(ctx, mapper.SummaryFromRemote(rec, at)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(page)

		if len(page) < e.pageSize {
			return total, nil
		}
	}
}

// pullGoals applies each remote goal through Replace so a goal created
// independently on two devices converges on the surviving remote id instead
// of violating the one-live-goal-per-category rule.
func (e *Engine) pullGoals(ctx context.Context, owner string) (int, error) {
	recs, err := e.remote.Goals(ctx, owner)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	at := e.now()
	err = dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := goals.NewSQLiteRepository(tx)
		for _, rec := range recs {
			if err := repo.Replace(ctx, mapper.GoalFromRemote(rec, at)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (e *Engine) pullPreferences(ctx context.Context, owner string) (int, error) {
	rec, err := e.remote.Preferences(ctx, owner)
	if errors.Is(err, remote.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	repo := preferences.NewSQLiteRepository(e.db)
	local, err := repo.Get(ctx, owner)
	switch {
	case errors.Is(err, preferences.ErrNotFound):
		// no local copy yet, adopt the remote one
	case err != nil:
		return 0, err
	case !remoteWins(local.UpdatedAt, &rec.UpdatedAt):
		// the local copy (possibly dirty) stands; push resolves it later
		return 0, nil
	}

	if err := repo.Apply(ctx, mapper.PreferencesFromRemote(*rec, e.now())); err != nil {
		return 0, err
	}
	return 1, nil
}
