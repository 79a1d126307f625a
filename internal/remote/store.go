// Package remote talks to the shared backend store. The protocol surface is
// deliberately narrow: filtered reads with offset pagination, bulk
// upsert-by-id, and a single delete-by-filter used by retention pruning.
package remote

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("remote record not found")

// DefaultPageSize is the fixed read window used by pulls.
const DefaultPageSize = 1000

// Page is an offset/limit read window.
type Page struct {
	Limit  int
	Offset int
}

// LogRecord is the remote representation of an event log.
type LogRecord struct {
	ID        string
	Owner     string
	Category  string
	Value     float64
	Unit      string
	EventTime time.Time
	Metadata  string
	CreatedAt time.Time
	Deleted   bool
}

// GoalRecord is the remote representation of a goal. The remote store keeps
// at most one row per (owner, category).
type GoalRecord struct {
	ID        string
	Owner     string
	Category  string
	Target    float64
	Unit      string
	UpdatedAt time.Time
	Deleted   bool
}

// PreferencesRecord is the remote representation of the singleton
// preferences record.
type PreferencesRecord struct {
	Owner     string
	Settings  string
	UpdatedAt time.Time
}

// SummaryRecord is the remote representation of a daily summary.
type SummaryRecord struct {
	ID       string
	Owner    string
	Category string
	Day      string
	Total    float64
	Count    int64
}

// Store is the remote protocol consumed by the sync engine. Upserts are
// idempotent by id (or natural key for goals and preferences), so retrying a
// batch after a crash converges instead of duplicating.
type Store interface {
	UpsertLogs(ctx context.Context, recs []LogRecord) (int, error)
	UpsertGoals(ctx context.Context, recs []GoalRecord) (int, error)
	UpsertPreferences(ctx context.Context, rec PreferencesRecord) error
	UpsertSummaries(ctx context.Context, recs []SummaryRecord) (int, error)

	// Logs returns owner's logs ordered by event_time descending.
	Logs(ctx context.Context, owner string, page Page) ([]LogRecord, error)

	// Goals returns all of owner's goals; the set is small enough that it is
	// not paginated.
	Goals(ctx context.Context, owner string) ([]GoalRecord, error)

	// Summaries returns owner's summaries ordered by day descending.
	Summaries(ctx context.Context, owner string, page Page) ([]SummaryRecord, error)

	// Preferences returns owner's full preferences record or ErrNotFound.
	Preferences(ctx context.Context, owner string) (*PreferencesRecord, error)

	// PreferencesUpdatedAt returns only the conflict timestamp, or nil when
	// no remote record exists. Used by the pre-push conflict check so the
	// full body is fetched only when the remote copy wins.
	PreferencesUpdatedAt(ctx context.Context, owner string) (*time.Time, error)

	// DeleteLogsBefore removes owner's logs with event_time strictly before
	// cutoff. The one destructive call in the protocol.
	DeleteLogsBefore(ctx context.Context, owner string, cutoff time.Time) (int64, error)
}
