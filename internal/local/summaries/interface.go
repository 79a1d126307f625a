package summaries

import (
	"context"
	"time"

	"tracklite/internal/models"
)

// Repository describes storage for derived daily summaries.
type Repository interface {
	// Insert stores a freshly consolidated summary (dirty).
	Insert(ctx context.Context, s *models.DailySummary) error

	// Exists reports whether a summary exists for (owner, category, day).
	Exists(ctx context.Context, owner, category, day string) (bool, error)

	// Dirty returns all summaries of owner with synced_at IS NULL.
	Dirty(ctx context.Context, owner string) ([]*models.DailySummary, error)

	// MarkSynced sets synced_at = at on the given ids.
	MarkSynced(ctx context.Context, ids []string, at time.Time) error

	// Upsert inserts or replaces a row by id; used when applying pulled pages.
	Upsert(ctx context.Context, s *models.DailySummary) error

	// LatestSyncedDay returns the most recent day with a confirmed-synced
	// summary for owner, or "" when none exists.
	LatestSyncedDay(ctx context.Context, owner string) (string, error)

	// EarliestUnsyncedDay returns the oldest day with an unconfirmed summary
	// for owner, or "" when none exists.
	EarliestUnsyncedDay(ctx context.Context, owner string) (string, error)

	// Range returns summaries of (owner, category) with fromDay <= day <= toDay,
	// ordered by day ascending.
	Range(ctx context.Context, owner, category, fromDay, toDay string) ([]*models.DailySummary, error)
}
