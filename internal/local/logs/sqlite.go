package logs

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

var ErrNotFound = errors.New("log not found")

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const logColumns = `id, owner, category, value, unit, event_time, metadata, created_at, synced_at, deleted`

func syncedMs(synced *time.Time) any {
	if synced == nil {
		return nil
	}
	return synced.UnixMilli()
}

func fromMs(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLog(row scannable) (*models.EventLog, error) {
	var l models.EventLog
	var eventMs, createdMs int64
	var synced sql.NullInt64
	if err := row.Scan(&l.ID, &l.Owner, &l.Category, &l.Value, &l.Unit,
		&eventMs, &l.Metadata, &createdMs, &synced, &l.Deleted); err != nil {
		return nil, err
	}
	l.EventTime = fromMs(eventMs)
	l.CreatedAt = fromMs(createdMs)
	if synced.Valid {
		t := fromMs(synced.Int64)
		l.SyncedAt = &t
	}
	return &l, nil
}

func (r *SQLiteRepository) queryLogs(ctx context.Context, query string, args ...any) ([]*models.EventLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	var result []*models.EventLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, l *models.EventLog) error {
	query := `INSERT INTO logs (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Owner, l.Category, l.Value, l.Unit,
		l.EventTime.UnixMilli(), l.Metadata, l.CreatedAt.UnixMilli(),
		syncedMs(l.SyncedAt), l.Deleted)
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.EventLog, error) {
	query := `SELECT ` + logColumns + ` FROM logs WHERE id = ?`
	l, err := scanLog(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE logs SET deleted = 1, synced_at = NULL WHERE id = ? AND deleted = 0`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Dirty(ctx context.Context, owner string) ([]*models.EventLog, error) {
	query := `SELECT ` + logColumns + ` FROM logs WHERE owner = ? AND synced_at IS NULL`
	return r.queryLogs(ctx, query, owner)
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
	query := `UPDATE logs SET synced_at = ? WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark logs synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, l *models.EventLog) error {
	query := `INSERT INTO logs (` + logColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			category = excluded.category,
			value = excluded.value,
			unit = excluded.unit,
			event_time = excluded.event_time,
			metadata = excluded.metadata,
			created_at = excluded.created_at,
			synced_at = excluded.synced_at,
			deleted = excluded.deleted`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Owner, l.Category, l.Value, l.Unit,
		l.EventTime.UnixMilli(), l.Metadata, l.CreatedAt.UnixMilli(),
		syncedMs(l.SyncedAt), l.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) OlderThan(ctx context.Context, owner string, cutoff time.Time) ([]*models.EventLog, error) {
	query := `SELECT ` + logColumns + ` FROM logs
		WHERE owner = ? AND deleted = 0 AND event_time < ?
		ORDER BY event_time`
	return r.queryLogs(ctx, query, owner, cutoff.UnixMilli())
}

func (r *SQLiteRepository) Since(ctx context.Context, owner, category string, cutoff time.Time) ([]*models.EventLog, error) {
	query := `SELECT ` + logColumns + ` FROM logs
		WHERE owner = ? AND category = ? AND deleted = 0 AND event_time >= ?
		ORDER BY event_time`
	return r.queryLogs(ctx, query, owner, category, cutoff.UnixMilli())
}

func (r *SQLiteRepository) ReassignOwner(ctx context.Context, from, to string) (int64, error) {
	query := `UPDATE logs SET owner = ?, synced_at = NULL WHERE owner = ?`
	res, err := r.db.ExecContext(ctx, query, to, from)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign logs: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}
