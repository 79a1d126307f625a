package preferences

import (
	"context"
	"time"

	"tracklite/internal/models"
)

// Repository describes storage for the singleton per-owner preferences
// record. The owner id is the primary key.
type Repository interface {
	// Get returns the preferences of owner, or ErrNotFound.
	Get(ctx context.Context, owner string) (*models.Preferences, error)

	// Save upserts the settings bag for owner, stamps UpdatedAt and marks the
	// record dirty.
	Save(ctx context.Context, owner, settings string, updatedAt time.Time) error

	// MarkSynced sets synced_at = at for owner.
	MarkSynced(ctx context.Context, owner string, at time.Time) error

	// Apply overwrites the row with a remote copy, including its sync marker.
	Apply(ctx context.Context, p *models.Preferences) error

	// ReassignOwner moves the record owned by from to to and re-dirties it.
	// When to already has preferences the from record is discarded. Returns
	// the number of rows moved (0 or 1).
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
}
