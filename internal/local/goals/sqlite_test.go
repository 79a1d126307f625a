package goals

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"tracklite/internal/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE goals (
  id TEXT PRIMARY KEY,
  owner TEXT NOT NULL,
  category TEXT NOT NULL,
  target REAL NOT NULL,
  unit TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  synced_at INTEGER,
  deleted INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func countGoals(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM goals`).Scan(&n))
	return n
}

func TestSet_UpsertsByNaturalKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	first := models.NewGoal("owner-1", "water", 2000, "ml")
	require.NoError(t, r.Set(ctx, first))

	second := models.NewGoal("owner-1", "water", 2500, "ml")
	require.NoError(t, r.Set(ctx, second))

	assert.Equal(t, 1, countGoals(t, db), "one live goal per (owner, category)")

	got, err := r.Get(ctx, "owner-1", "water")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, got.Target)
	assert.Equal(t, first.ID, got.ID, "existing row keeps its id")
	assert.Nil(t, got.SyncedAt, "set must dirty the row")
}

func TestSet_DistinctCategories(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, models.NewGoal("owner-1", "water", 2000, "ml")))
	require.NoError(t, r.Set(ctx, models.NewGoal("owner-1", "steps", 10000, "count")))
	assert.Equal(t, 2, countGoals(t, db))

	cats, err := r.Categories(ctx, "owner-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"water", "steps"}, cats)
}

func TestSoftDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	g := models.NewGoal("owner-1", "water", 2000, "ml")
	require.NoError(t, r.Set(ctx, g))
	require.NoError(t, r.MarkSynced(ctx, []string{g.ID}, time.Now()))

	require.NoError(t, r.SoftDelete(ctx, "owner-1", "water"))

	_, err := r.Get(ctx, "owner-1", "water")
	assert.ErrorIs(t, err, ErrNotFound)

	dirty, err := r.Dirty(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, dirty, 1, "tombstone must be dirty")
	assert.True(t, dirty[0].Deleted)

	assert.ErrorIs(t, r.SoftDelete(ctx, "owner-1", "water"), ErrNotFound)
}

func TestReplace_AdoptsRemoteRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	local := models.NewGoal("owner-1", "water", 2000, "ml")
	require.NoError(t, r.Set(ctx, local))

	now := time.Now().Truncate(time.Millisecond)
	remote := &models.Goal{
		ID:        "remote-id",
		Owner:     "owner-1",
		Category:  "water",
		Target:    3000,
		Unit:      "ml",
		UpdatedAt: now,
		SyncedAt:  &now,
	}
	require.NoError(t, r.Replace(ctx, remote))

	assert.Equal(t, 1, countGoals(t, db), "replaced row must not duplicate the category")

	got, err := r.Get(ctx, "owner-1", "water")
	require.NoError(t, err)
	assert.Equal(t, "remote-id", got.ID)
	assert.Equal(t, 3000.0, got.Target)
	require.NotNil(t, got.SyncedAt)

	// applying the same remote row again converges
	require.NoError(t, r.Replace(ctx, remote))
	assert.Equal(t, 1, countGoals(t, db))
}

func TestReassignOwner_DiscardsDuplicateCategories(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, models.NewGoal(models.GuestOwner, "water", 1500, "ml")))
	require.NoError(t, r.Set(ctx, models.NewGoal(models.GuestOwner, "steps", 8000, "count")))
	require.NoError(t, r.Set(ctx, models.NewGoal("owner-1", "water", 2000, "ml")))

	moved, err := r.ReassignOwner(ctx, models.GuestOwner, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), moved, "only the non-conflicting goal moves")

	water, err := r.Get(ctx, "owner-1", "water")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, water.Target, "existing goal wins over guest goal")

	steps, err := r.Get(ctx, "owner-1", "steps")
	require.NoError(t, err)
	assert.Equal(t, 8000.0, steps.Target)
	assert.Nil(t, steps.SyncedAt, "moved goal must be re-dirtied")

	moved, err = r.ReassignOwner(ctx, models.GuestOwner, "owner-1")
	require.NoError(t, err)
	assert.Zero(t, moved, "second run moves nothing")
}
