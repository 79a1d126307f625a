package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tracklite/internal/dbx"
	"tracklite/internal/models"
)

var ErrNotFound = errors.New("preferences not found")

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, owner string) (*models.Preferences, error) {
	query := `SELECT owner, settings, updated_at, synced_at FROM preferences WHERE owner = ?`
	var p models.Preferences
	var updatedMs int64
	var synced sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, owner).Scan(&p.Owner, &p.Settings, &updatedMs, &synced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	p.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	if synced.Valid {
		t := time.UnixMilli(synced.Int64).UTC()
		p.SyncedAt = &t
	}
	return &p, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, owner, settings string, updatedAt time.Time) error {
	query := `INSERT INTO preferences (owner, settings, updated_at, synced_at)
		VALUES (?, ?, ?, NULL)
		ON CONFLICT(owner) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at,
			synced_at = NULL`
	if _, err := r.db.ExecContext(ctx, query, owner, settings, updatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, owner string, at time.Time) error {
	query := `UPDATE preferences SET synced_at = ? WHERE owner = ?`
	if _, err := r.db.ExecContext(ctx, query, at.UnixMilli(), owner); err != nil {
		return fmt.Errorf("failed to mark preferences synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Apply(ctx context.Context, p *models.Preferences) error {
	var synced any
	if p.SyncedAt != nil {
		synced = p.SyncedAt.UnixMilli()
	}
	query := `INSERT INTO preferences (owner, settings, updated_at, synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at`
	if _, err := r.db.ExecContext(ctx, query, p.Owner, p.Settings, p.UpdatedAt.UnixMilli(), synced); err != nil {
		return fmt.Errorf("failed to apply preferences: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	// Keep the target's record when both exist; the source copy is dropped.
	drop := `DELETE FROM preferences WHERE owner = ?
		AND EXISTS (SELECT 1 FROM preferences WHERE owner = ?)`
	if _, err := r.db.ExecContext(ctx, drop, from, to); err != nil {
		return 0, fmt.Errorf("failed to drop duplicate preferences: %w", err)
	}

	move := `UPDATE preferences SET owner = ?, synced_at = NULL WHERE owner = ?`
	res, err := r.db.ExecContext(ctx, move, to, from)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign preferences: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}
