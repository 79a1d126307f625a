package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tracklite/internal/dbx"
	"tracklite/internal/models"
)

var ErrNotFound = errors.New("goal not found")

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const goalColumns = `id, owner, category, target, unit, updated_at, synced_at, deleted`

func syncedMs(synced *time.Time) any {
	if synced == nil {
		return nil
	}
	return synced.UnixMilli()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanGoal(row scannable) (*models.Goal, error) {
	var g models.Goal
	var updatedMs int64
	var synced sql.NullInt64
	if err := row.Scan(&g.ID, &g.Owner, &g.Category, &g.Target, &g.Unit,
		&updatedMs, &synced, &g.Deleted); err != nil {
		return nil, err
	}
	g.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	if synced.Valid {
		t := time.UnixMilli(synced.Int64).UTC()
		g.SyncedAt = &t
	}
	return &g, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, g *models.Goal) error {
	// Upsert by natural key: update the live row if one exists, otherwise
	// insert. A uniqueness constraint alone would not survive pulled rows
	// arriving under a different id.
	update := `UPDATE goals SET target = ?, unit = ?, updated_at = ?, synced_at = NULL
		WHERE owner = ? AND category = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, update,
		g.Target, g.Unit, g.UpdatedAt.UnixMilli(), g.Owner, g.Category)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra > 0 {
		return nil
	}

	insert := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, NULL, 0)`
	if _, err := r.db.ExecContext(ctx, insert,
		g.ID, g.Owner, g.Category, g.Target, g.Unit, g.UpdatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, owner, category string) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner = ? AND category = ? AND deleted = 0`
	g, err := scanGoal(r.db.QueryRowContext(ctx, query, owner, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, owner, category string) error {
	query := `UPDATE goals SET deleted = 1, synced_at = NULL
		WHERE owner = ? AND category = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, owner, category)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Dirty(ctx context.Context, owner string) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE owner = ? AND synced_at IS NULL`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select goals: %w", err)
	}
	defer rows.Close()

	var result []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, at.UnixMilli())
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE goals SET synced_at = ? WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark goals synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, g *models.Goal) error {
	// The remote keeps one row per (owner, category); adopting its id keeps
	// devices converged even when each created the goal independently.
	drop := `DELETE FROM goals WHERE owner = ? AND category = ? AND id <> ?`
	if _, err := r.db.ExecContext(ctx, drop, g.Owner, g.Category, g.ID); err != nil {
		return fmt.Errorf("failed to drop shadowed goal: %w", err)
	}

	upsert := `INSERT INTO goals (` + goalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			category = excluded.category,
			target = excluded.target,
			unit = excluded.unit,
			updated_at = excluded.updated_at,
			synced_at = excluded.synced_at,
			deleted = excluded.deleted`
	_, err := r.db.ExecContext(ctx, upsert,
		g.ID, g.Owner, g.Category, g.Target, g.Unit,
		g.UpdatedAt.UnixMilli(), syncedMs(g.SyncedAt), g.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Categories(ctx context.Context, owner string) ([]string, error) {
	query := `SELECT category FROM goals WHERE owner = ? AND deleted = 0`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	// Drop source goals whose category already has a live goal for the
	// target owner; two targets per category must never survive.
	drop := `DELETE FROM goals WHERE owner = ? AND category IN (
		SELECT category FROM goals WHERE owner = ? AND deleted = 0)`
	if _, err := r.db.ExecContext(ctx, drop, from, to); err != nil {
		return 0, fmt.Errorf("failed to drop duplicate goals: %w", err)
	}

	move := `UPDATE goals SET owner = ?, synced_at = NULL WHERE owner = ?`
	res, err := r.db.ExecContext(ctx, move, to, from)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign goals: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}
