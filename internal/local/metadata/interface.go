package metadata

import "context"

// Repository is a small key-value store for sync bookkeeping (migration
// guards, last-sync markers).
type Repository interface {
	// Get returns the value stored under name, or "" when absent.
	Get(ctx context.Context, name string) (string, error)

	// Set inserts or replaces the value stored under name.
	Set(ctx context.Context, name, value string) error

	// Delete removes name; deleting an absent name is not an error.
	Delete(ctx context.Context, name string) error
}
