package summaries

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

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const summaryColumns = `id, owner, category, day, total, count, derived, synced_at`

func syncedMs(synced *time.Time) any {
	if synced == nil {
		return nil
	}
	return synced.UnixMilli()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSummary(row scannable) (*models.DailySummary, error) {
	var s models.DailySummary
	var synced sql.NullInt64
	if err := row.Scan(&s.ID, &s.Owner, &s.Category, &s.Day,
		&s.Total, &s.Count, &s.Derived, &synced); err != nil {
		return nil, err
	}
	if synced.Valid {
		t := time.UnixMilli(synced.Int64).UTC()
		s.SyncedAt = &t
	}
	return &s, nil
}

func (r *SQLiteRepository) querySummaries(ctx context.Context, query string, args ...any) ([]*models.DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select summaries: %w", err)
	}
	defer rows.Close()

	var result []*models.DailySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, s *models.DailySummary) error {
	query := `INSERT INTO daily_summaries (` + summaryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Owner, s.Category, s.Day, s.Total, s.Count, s.Derived, syncedMs(s.SyncedAt))
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, owner, category, day string) (bool, error) {
	query := `SELECT 1 FROM daily_summaries WHERE owner = ? AND category = ? AND day = ?`
	var one int
	err := r.db.QueryRowContext(ctx, query, owner, category, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check summary: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Dirty(ctx context.Context, owner string) ([]*models.DailySummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM daily_summaries WHERE owner = ? AND synced_at IS NULL`
	return r.querySummaries(ctx, query, owner)
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
	query := `UPDATE daily_summaries SET synced_at = ? WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark summaries synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.DailySummary) error {
	query := `INSERT INTO daily_summaries (` + summaryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			category = excluded.category,
			day = excluded.day,
			total = excluded.total,
			count = excluded.count,
			derived = excluded.derived,
			synced_at = excluded.synced_at`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Owner, s.Category, s.Day, s.Total, s.Count, s.Derived, syncedMs(s.SyncedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LatestSyncedDay(ctx context.Context, owner string) (string, error) {
	query := `SELECT COALESCE(MAX(day), '') FROM daily_summaries WHERE owner = ? AND synced_at IS NOT NULL`
	var day string
	if err := r.db.QueryRowContext(ctx, query, owner).Scan(&day); err != nil {
		return "", fmt.Errorf("failed to get latest synced day: %w", err)
	}
	return day, nil
}

func (r *SQLiteRepository) EarliestUnsyncedDay(ctx context.Context, owner string) (string, error) {
	query := `SELECT COALESCE(MIN(day), '') FROM daily_summaries WHERE owner = ? AND synced_at IS NULL`
	var day string
	if err := r.db.QueryRowContext(ctx, query, owner).Scan(&day); err != nil {
		return "", fmt.Errorf("failed to get earliest unsynced day: %w", err)
	}
	return day, nil
}

func (r *SQLiteRepository) Range(ctx context.Context, owner, category, fromDay, toDay string) ([]*models.DailySummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM daily_summaries
		WHERE owner = ? AND category = ? AND day >= ? AND day <= ?
		ORDER BY day`
	return r.querySummaries(ctx, query, owner, category, fromDay, toDay)
}
