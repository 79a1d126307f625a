package goals

import (
	"context"
	"time"

	"tracklite/internal/models"
)

// Repository describes storage operations for per-category goals. The natural
// key is (owner, category): Set upserts by it, and applying a pulled row
// replaces any live local row for the same category.
type Repository interface {
	// Set creates or updates the live goal for (owner, category) and marks
	// it dirty.
	Set(ctx context.Context, g *models.Goal) error

	// Get returns the live goal for (owner, category).
	Get(ctx context.Context, owner, category string) (*models.Goal, error)

	// SoftDelete tombstones the live goal for (owner, category) and resets
	// synced_at.
	SoftDelete(ctx context.Context, owner, category string) error

	// Dirty returns all goals of owner with synced_at IS NULL, tombstones
	// included.
	Dirty(ctx context.Context, owner string) ([]*models.Goal, error)

	// MarkSynced sets synced_at = at on the given ids.
	MarkSynced(ctx context.Context, ids []string, at time.Time) error

	// Replace applies a pulled row: any other row for the same
	// (owner, category) is dropped, then the row is upserted by id.
	Replace(ctx context.Context, g *models.Goal) error

	// Categories returns the categories with a live goal for owner.
	Categories(ctx context.Context, owner string) ([]string, error)

	// ReassignOwner moves goals owned by from to to and resets synced_at.
	// Categories already holding a live goal for to are discarded instead of
	// moved. Returns the number of rows moved.
	ReassignOwner(ctx context.Context, from, to string) (int64, error)
}
