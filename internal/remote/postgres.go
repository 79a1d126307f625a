package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"tracklite/internal/dbx"
	"tracklite/internal/models"
	"tracklite/internal/remote/migrations"
)

// PostgresStore implements Store against the shared PostgreSQL backend.
type PostgresStore struct {
	db *sql.DB
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded remote-schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// OpenPostgres connects to the backend at dsn and migrates its schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate remote db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an already opened connection; used by tests.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) UpsertLogs(ctx context.Context, recs []LogRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO logs (id, owner, category, value, unit, event_time, metadata, created_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			category = EXCLUDED.category,
			value = EXCLUDED.value,
			unit = EXCLUDED.unit,
			event_time = EXCLUDED.event_time,
			metadata = EXCLUDED.metadata,
			deleted = EXCLUDED.deleted
		WHERE logs.owner = EXCLUDED.owner`
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, query,
				r.ID, r.Owner, r.Category, r.Value, r.Unit,
				r.EventTime, r.Metadata, r.CreatedAt, r.Deleted); err != nil {
				return fmt.Errorf("failed to upsert log %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *PostgresStore) UpsertGoals(ctx context.Context, recs []GoalRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	// Natural key (owner, category): the first writer's id survives, later
	// writers update fields only. Devices adopt the surviving id on pull.
	query := `
		INSERT INTO goals (id, owner, category, target, unit, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner, category)
		DO UPDATE SET
			target = EXCLUDED.target,
			unit = EXCLUDED.unit,
			updated_at = EXCLUDED.updated_at,
			deleted = EXCLUDED.deleted`
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, query,
				r.ID, r.Owner, r.Category, r.Target, r.Unit, r.UpdatedAt, r.Deleted); err != nil {
				return fmt.Errorf("failed to upsert goal %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *PostgresStore) UpsertPreferences(ctx context.Context, rec PreferencesRecord) error {
	query := `
		INSERT INTO preferences (owner, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner)
		DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, rec.Owner, rec.Settings, rec.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertSummaries(ctx context.Context, recs []SummaryRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO daily_summaries (id, owner, category, day, total, count)
		VALUES ($1, $2, $3, $4::date, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			total = EXCLUDED.total,
			count = EXCLUDED.count
		WHERE daily_summaries.owner = EXCLUDED.owner`
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, query,
				r.ID, r.Owner, r.Category, r.Day, r.Total, r.Count); err != nil {
				return fmt.Errorf("failed to upsert summary %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

func (s *PostgresStore) Logs(ctx context.Context, owner string, page Page) ([]LogRecord, error) {
	query := `
		SELECT id, owner, category, value, unit, event_time, metadata, created_at, deleted
		FROM logs
		WHERE owner = $1
		ORDER BY event_time DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.db.QueryContext(ctx, query, owner, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select logs: %w", err)
	}
	defer rows.Close()

	var result []LogRecord
	for rows.Next() {
		var r LogRecord
		if err := rows.Scan(&r.ID, &r.Owner, &r.Category, &r.Value, &r.Unit,
			&r.EventTime, &r.Metadata, &r.CreatedAt, &r.Deleted); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Goals(ctx context.Context, owner string) ([]GoalRecord, error) {
	query := `
		SELECT id, owner, category, target, unit, updated_at, deleted
		FROM goals
		WHERE owner = $1`
	rows, err := s.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select goals: %w", err)
	}
	defer rows.Close()

	var result []GoalRecord
	for rows.Next() {
		var r GoalRecord
		if err := rows.Scan(&r.ID, &r.Owner, &r.Category, &r.Target, &r.Unit,
			&r.UpdatedAt, &r.Deleted); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Summaries(ctx context.Context, owner string, page Page) ([]SummaryRecord, error) {
	query := `
		SELECT id, owner, category, day, total, count
		FROM daily_summaries
		WHERE owner = $1
		ORDER BY day DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.db.QueryContext(ctx, query, owner, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select summaries: %w", err)
	}
	defer rows.Close()

	var result []SummaryRecord
	for rows.Next() {
		var r SummaryRecord
		var day time.Time
		if err := rows.Scan(&r.ID, &r.Owner, &r.Category, &day, &r.Total, &r.Count); err != nil {
			return nil, err
		}
		r.Day = day.Format(models.DayFormat)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Preferences(ctx context.Context, owner string) (*PreferencesRecord, error) {
	query := `SELECT owner, settings, updated_at FROM preferences WHERE owner = $1`
	var r PreferencesRecord
	err := s.db.QueryRowContext(ctx, query, owner).Scan(&r.Owner, &r.Settings, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) PreferencesUpdatedAt(ctx context.Context, owner string) (*time.Time, error) {
	query := `SELECT updated_at FROM preferences WHERE owner = $1`
	var t time.Time
	err := s.db.QueryRowContext(ctx, query, owner).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences timestamp: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) DeleteLogsBefore(ctx context.Context, owner string, cutoff time.Time) (int64, error) {
	query := `DELETE FROM logs WHERE owner = $1 AND event_time < $2`
	res, err := s.db.ExecContext(ctx, query, owner, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete logs: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra, nil
}
