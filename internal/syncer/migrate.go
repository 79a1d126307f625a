package syncer

import (
	"context"
	"database/sql"
	"errors"

	"tracklite/internal/dbx"
	"tracklite/internal/local/goals"
	"tracklite/internal/local/logs"
	"tracklite/internal/local/preferences"
	"tracklite/internal/logging"
	"tracklite/internal/models"
)

// ErrBadMigrationTarget is returned when Run is asked to migrate guest data
// to the guest sentinel itself or to an empty owner.
var ErrBadMigrationTarget = errors.New("invalid migration target owner")

// Migrator adopts data recorded before sign-in. Everything owned by the
// guest sentinel is reassigned to the real owner and re-dirtied so the next
// push uploads it under the correct identity.
type Migrator struct {
	db  *sql.DB
	log logging.Logger
}

func NewMigrator(db *sql.DB, log logging.Logger) *Migrator {
	return &Migrator{db: db, log: log}
}

// Run reassigns all guest-owned rows to owner in a single transaction. On
// any failure the transaction rolls back and guest data stays intact for a
// later retry; nothing is ever dropped on the error path. Goal categories
// that collide with an existing goal of owner keep the owner's goal.
//
// Run is idempotent without any bookkeeping: reassigned rows leave the
// guest set, so a repeated call moves nothing. Entries recorded as guest
// between a logout and the next sign-in are picked up by that sign-in's Run.
func (m *Migrator) Run(ctx context.Context, owner string) error {
	if owner == "" || owner == models.GuestOwner {
		return ErrBadMigrationTarget
	}

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		nLogs, err := logs.NewSQLiteRepository(tx).ReassignOwner(ctx, models.GuestOwner, owner)
		if err != nil {
			return err
		}
		nGoals, err := goals.NewSQLiteRepository(tx).ReassignOwner(ctx, models.GuestOwner, owner)
		if err != nil {
			return err
		}
		nPrefs, err := preferences.NewSQLiteRepository(tx).ReassignOwner(ctx, models.GuestOwner, owner)
		if err != nil {
			return err
		}
		m.log.Info(ctx, "migrated guest data",
			"owner", owner, "logs", nLogs, "goals", nGoals, "preferences", nPrefs)
		return nil
	})
}
