package logs

import (
	"context"
	"time"

	"tracklite/internal/models"
)

// Repository describes storage operations for event logs in the local store.
type Repository interface {
	// Insert stores a newly created log. The row keeps whatever SyncedAt the
	// model carries (nil for user-created, set for pulled rows).
	Insert(ctx context.Context, l *models.EventLog) error

	// GetByID returns a log by id, including tombstones.
	GetByID(ctx context.Context, id string) (*models.EventLog, error)

	// SoftDelete marks a log deleted and resets synced_at so the tombstone
	// is picked up by the next push.
	SoftDelete(ctx context.Context, id string) error

	// Dirty returns all logs owned by owner with synced_at IS NULL,
	// tombstones included.
	Dirty(ctx context.Context, owner string) ([]*models.EventLog, error)

	// MarkSynced sets synced_at = at on the given ids.
	MarkSynced(ctx context.Context, ids []string, at time.Time) error

	// Upsert inserts or replaces a row by id; used when applying pulled pages.
	Upsert(ctx context.Context, l *models.EventLog) error

	// OlderThan returns non-deleted logs of owner with event_time before cutoff.
	OlderThan(ctx context.Context, owner string, cutoff time.Time) ([]*models.EventLog, error)

	// Since returns non-deleted logs of owner and category with event_time at
	// or after cutoff.
	Since(ctx context.Context, owner, category string, cutoff time.Time) ([]*models.EventLog, error)

	// ReassignOwner moves every log owned by from to to and resets synced_at,
	// returning the number of rows moved.
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
}
