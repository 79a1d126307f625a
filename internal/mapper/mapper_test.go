package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracklite/internal/models"
	"tracklite/internal/remote"
)

func TestLogToRemote(t *testing.T) {
	l := models.NewEventLog("owner-1", "water", 250, "ml", time.Now(), `{"source":"manual"}`)

	r, err := LogToRemote(l)
	require.NoError(t, err)
	assert.Equal(t, l.ID, r.ID)
	assert.Equal(t, "owner-1", r.Owner)
	assert.Equal(t, "water", r.Category)
	assert.Equal(t, time.UTC, r.EventTime.Location())
}

func TestLogToRemote_NormalizesID(t *testing.T) {
	l := models.NewEventLog("owner-1", "water", 250, "ml", time.Now(), "")
	l.ID = "6BA7B810-9DAD-11D1-80B4-00C04FD430C8"

	r, err := LogToRemote(l)
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", r.ID)
}

func TestLogToRemote_Unmappable(t *testing.T) {
	base := func() *models.EventLog {
		return models.NewEventLog("owner-1", "water", 250, "ml", time.Now(), "")
	}

	bad := base()
	bad.ID = "not-a-uuid"
	_, err := LogToRemote(bad)
	assert.ErrorIs(t, err, ErrUnmappable)

	bad = base()
	bad.Owner = ""
	_, err = LogToRemote(bad)
	assert.ErrorIs(t, err, ErrUnmappable)

	bad = base()
	bad.Category = ""
	_, err = LogToRemote(bad)
	assert.ErrorIs(t, err, ErrUnmappable)

	bad = base()
	bad.EventTime = time.Time{}
	_, err = LogToRemote(bad)
	assert.ErrorIs(t, err, ErrUnmappable)
}

func TestLogRoundTrip_PreservesTombstone(t *testing.T) {
	l := models.NewEventLog("owner-1", "water", 250, "ml", time.Now(), "")
	l.Deleted = true

	r, err := LogToRemote(l)
	require.NoError(t, err)
	assert.True(t, r.Deleted)

	pulled := LogFromRemote(r, time.Now())
	assert.True(t, pulled.Deleted)
	require.NotNil(t, pulled.SyncedAt, "pulled rows arrive synced")
}

func TestGoalMapping(t *testing.T) {
	g := models.NewGoal("owner-1", "water", 2000, "ml")

	r, err := GoalToRemote(g)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, r.Target)

	back := GoalFromRemote(r, time.Now())
	assert.Equal(t, g.Category, back.Category)
	require.NotNil(t, back.SyncedAt)

	g.Category = ""
	_, err = GoalToRemote(g)
	assert.ErrorIs(t, err, ErrUnmappable)
}

func TestPreferencesMapping_FillsDefaults(t *testing.T) {
	p := &models.Preferences{Owner: "owner-1", UpdatedAt: time.Now()}

	r, err := PreferencesToRemote(p)
	require.NoError(t, err)
	assert.Equal(t, "{}", r.Settings, "empty bag becomes an empty object")

	back := PreferencesFromRemote(remote.PreferencesRecord{Owner: "owner-1", UpdatedAt: time.Now()}, time.Now())
	assert.Equal(t, "{}", back.Settings)

	_, err = PreferencesToRemote(&models.Preferences{})
	assert.ErrorIs(t, err, ErrUnmappable)
}

func TestSummaryMapping(t *testing.T) {
	s := &models.DailySummary{
		ID:       models.SummaryID("owner-1", "water", "2025-01-15"),
		Owner:    "owner-1",
		Category: "water",
		Day:      "2025-01-15",
		Total:    750,
		Count:    3,
		Derived:  true,
	}

	r, err := SummaryToRemote(s)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", r.Day)

	back := SummaryFromRemote(r, time.Now())
	assert.True(t, back.Derived)
	require.NotNil(t, back.SyncedAt)

	s.Day = "15/01/2025"
	_, err = SummaryToRemote(s)
	assert.ErrorIs(t, err, ErrUnmappable)
}
