// Package dbx holds the small database plumbing shared by every repository:
// the DBTX interface satisfied by both *sql.DB and *sql.Tx, and a helper for
// running a function inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the slice of database/sql that repositories use. Passing a *sql.Tx
// runs the repository inside that transaction; passing a *sql.DB runs it in
// autocommit mode.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, invokes fn with the transactional handle, and
// commits when fn returns nil. On error or panic the transaction is rolled
// back; panics are re-raised after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
