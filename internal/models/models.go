// Package models defines the entity families kept in the local store and
// synchronized with the remote store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestOwner is the reserved owner id for records created before sign-in.
// Records owned by it are reassigned to the authenticated owner by the
// guest migration.
const GuestOwner = "00000000-0000-0000-0000-000000000000"

// DayFormat is the calendar-day key format used by daily summaries.
const DayFormat = "2006-01-02"

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// summaryNamespace seeds deterministic daily-summary ids. It must never
// change, or re-consolidation would duplicate summaries under new ids.
var summaryNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// SummaryID derives the identifier of the daily summary for
// (owner, category, day). The same triple always yields the same id, so a
// repeated consolidation run overwrites rather than duplicates.
func SummaryID(owner, category, day string) string {
	return uuid.NewSHA1(summaryNamespace, []byte(owner+"|"+category+"|"+day)).String()
}

// EventLog is a single raw tracking event. Immutable once created except for
// soft deletion; deleting resets SyncedAt so the tombstone propagates.
type EventLog struct {
	ID        string
	Owner     string
	Category  string
	Value     float64
	Unit      string
	EventTime time.Time
	// Metadata is a free-form JSON blob attached by the caller.
	Metadata  string
	CreatedAt time.Time

	// SyncedAt is nil while the record has local changes not yet confirmed
	// on the remote store.
	SyncedAt *time.Time
	Deleted  bool
}

// NewEventLog creates a dirty event log owned by owner.
func NewEventLog(owner, category string, value float64, unit string, eventTime time.Time, metadata string) *EventLog {
	return &EventLog{
		ID:        uuid.NewString(),
		Owner:     owner,
		Category:  category,
		Value:     value,
		Unit:      unit,
		EventTime: eventTime.UTC(),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}

// Goal is a per-category target. At most one live goal exists per
// (owner, category); Set upserts by that natural key.
type Goal struct {
	ID        string
	Owner     string
	Category  string
	Target    float64
	Unit      string
	UpdatedAt time.Time

	SyncedAt *time.Time
	Deleted  bool
}

// NewGoal creates a dirty goal owned by owner.
func NewGoal(owner, category string, target float64, unit string) *Goal {
	return &Goal{
		ID:        uuid.NewString(),
		Owner:     owner,
		Category:  category,
		Target:    target,
		Unit:      unit,
		UpdatedAt: time.Now().UTC(),
	}
}

// Preferences is the singleton settings record for an owner; the owner id is
// the identifier. UpdatedAt drives last-writer-wins conflict resolution.
type Preferences struct {
	Owner string
	// Settings is a JSON object holding the heterogeneous settings bag.
	Settings  string
	UpdatedAt time.Time

	SyncedAt *time.Time
}

// DailySummary is one derived aggregate per (owner, category, day). It is
// produced only by consolidation and can be rebuilt from raw logs.
type DailySummary struct {
	ID       string
	Owner    string
	Category string
	// Day is the UTC calendar day in DayFormat.
	Day   string
	Total float64
	Count int64
	// Derived marks the row as computed rather than user-entered.
	Derived bool

	SyncedAt *time.Time
}

// Dirty reports whether the record still awaits remote confirmation.
func (l *EventLog) Dirty() bool     { return l.SyncedAt == nil }
func (g *Goal) Dirty() bool         { return g.SyncedAt == nil }
func (p *Preferences) Dirty() bool  { return p.SyncedAt == nil }
func (s *DailySummary) Dirty() bool { return s.SyncedAt == nil }
