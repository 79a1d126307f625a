// Package local wires the SQLite device store: it opens the database, runs
// the embedded migrations and vends the per-entity repositories.
package local

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"tracklite/internal/local/goals"
	"tracklite/internal/local/logs"
	"tracklite/internal/local/metadata"
	"tracklite/internal/local/migrations"
	"tracklite/internal/local/preferences"
	"tracklite/internal/local/summaries"
)

// Store bundles the local database handle with the repositories bound to it.
// Code that needs a transaction builds repositories over the tx handle via
// the New*Repository constructors instead.
type Store struct {
	DB          *sql.DB
	Logs        logs.Repository
	Goals       goals.Repository
	Preferences preferences.Repository
	Summaries   summaries.Repository
	Metadata    metadata.Repository
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the local database at dsn, migrates it and
// returns the repository bundle.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local db: %w", err)
	}

	return &Store{
		DB:          db,
		Logs:        logs.NewSQLiteRepository(db),
		Goals:       goals.NewSQLiteRepository(db),
		Preferences: preferences.NewSQLiteRepository(db),
		Summaries:   summaries.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}
