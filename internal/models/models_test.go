package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryID_Deterministic(t *testing.T) {
	a := SummaryID("owner-1", "water", "2025-01-15")
	b := SummaryID("owner-1", "water", "2025-01-15")
	assert.Equal(t, a, b, "same triple must yield the same id")

	assert.NotEqual(t, a, SummaryID("owner-2", "water", "2025-01-15"))
	assert.NotEqual(t, a, SummaryID("owner-1", "steps", "2025-01-15"))
	assert.NotEqual(t, a, SummaryID("owner-1", "water", "2025-01-16"))
}

func TestDayOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 01:30 on the 16th in UTC+5 is still the 15th in UTC.
	local := time.Date(2025, 1, 16, 1, 30, 0, 0, loc)
	assert.Equal(t, "2025-01-15", DayOf(local))
}

func TestNewEventLog_IsDirty(t *testing.T) {
	l := NewEventLog("owner-1", "water", 250, "ml", time.Now(), "{}")
	require.NotEmpty(t, l.ID)
	assert.True(t, l.Dirty())
	assert.False(t, l.Deleted)
	assert.Equal(t, time.UTC, l.EventTime.Location())
}

func TestNewGoal_IsDirty(t *testing.T) {
	g := NewGoal("owner-1", "water", 2000, "ml")
	require.NotEmpty(t, g.ID)
	assert.True(t, g.Dirty())
	assert.False(t, g.UpdatedAt.IsZero())
}
