// Package mapper converts between local models and remote records, one
// explicit function per entity and direction. A record that fails conversion
// returns ErrUnmappable; the sync engine skips and logs it, leaving the row
// dirty for the next cycle.
package mapper

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracklite/internal/models"
	"tracklite/internal/remote"
)

var ErrUnmappable = errors.New("record cannot be mapped")

func unmappable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnmappable, fmt.Sprintf(format, args...))
}

// normalizeID parses and re-renders the id so remote always receives the
// canonical lowercase-hyphenated form.
func normalizeID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", unmappable("bad id %q", id)
	}
	return u.String(), nil
}

func LogToRemote(l *models.EventLog) (remote.LogRecord, error) {
	id, err := normalizeID(l.ID)
	if err != nil {
		return remote.LogRecord{}, err
	}
	if l.Owner == "" {
		return remote.LogRecord{}, unmappable("log %s has no owner", id)
	}
	if l.Category == "" {
		return remote.LogRecord{}, unmappable("log %s has no category", id)
	}
	if l.EventTime.IsZero() {
		return remote.LogRecord{}, unmappable("log %s has no event time", id)
	}
	return remote.LogRecord{
		ID:        id,
		Owner:     l.Owner,
		Category:  l.Category,
		Value:     l.Value,
		Unit:      l.Unit,
		EventTime: l.EventTime.UTC(),
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt.UTC(),
		Deleted:   l.Deleted,
	}, nil
}

func LogFromRemote(r remote.LogRecord, syncedAt time.Time) *models.EventLog {
	s := syncedAt.UTC()
	return &models.EventLog{
		ID:        r.ID,
		Owner:     r.Owner,
		Category:  r.Category,
		Value:     r.Value,
		Unit:      r.Unit,
		EventTime: r.EventTime.UTC(),
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt.UTC(),
		SyncedAt:  &s,
		Deleted:   r.Deleted,
	}
}

func GoalToRemote(g *models.Goal) (remote.GoalRecord, error) {
	id, err := normalizeID(g.ID)
	if err != nil {
		return remote.GoalRecord{}, err
	}
	if g.Owner == "" {
		return remote.GoalRecord{}, unmappable("goal %s has no owner", id)
	}
	if g.Category == "" {
		return remote.GoalRecord{}, unmappable("goal %s has no category", id)
	}
	return remote.GoalRecord{
		ID:        id,
		Owner:     g.Owner,
		Category:  g.Category,
		Target:    g.Target,
		Unit:      g.Unit,
		UpdatedAt: g.UpdatedAt.UTC(),
		Deleted:   g.Deleted,
	}, nil
}

func GoalFromRemote(r remote.GoalRecord, syncedAt time.Time) *models.Goal {
	s := syncedAt.UTC()
	return &models.Goal{
		ID:        r.ID,
		Owner:     r.Owner,
		Category:  r.Category,
		Target:    r.Target,
		Unit:      r.Unit,
		UpdatedAt: r.UpdatedAt.UTC(),
		SyncedAt:  &s,
		Deleted:   r.Deleted,
	}
}

func PreferencesToRemote(p *models.Preferences) (remote.PreferencesRecord, error) {
	if p.Owner == "" {
		return remote.PreferencesRecord{}, unmappable("preferences have no owner")
	}
	settings := p.Settings
	if settings == "" {
		settings = "{}"
	}
	return remote.PreferencesRecord{
		Owner:     p.Owner,
		Settings:  settings,
		UpdatedAt: p.UpdatedAt.UTC(),
	}, nil
}

func PreferencesFromRemote(r remote.PreferencesRecord, syncedAt time.Time) *models.Preferences {
	s := syncedAt.UTC()
	settings := r.Settings
	if settings == "" {
		settings = "{}"
	}
	return &models.Preferences{
		Owner:     r.Owner,
		Settings:  settings,
		UpdatedAt: r.UpdatedAt.UTC(),
		SyncedAt:  &s,
	}
}

func SummaryToRemote(s *models.DailySummary) (remote.SummaryRecord, error) {
	id, err := normalizeID(s.ID)
	if err != nil {
		return remote.SummaryRecord{}, err
	}
	if s.Owner == "" {
		return remote.SummaryRecord{}, unmappable("summary %s has no owner", id)
	}
	if _, err := time.Parse(models.DayFormat, s.Day); err != nil {
		return remote.SummaryRecord{}, unmappable("summary %s has bad day %q", id, s.Day)
	}
	return remote.SummaryRecord{
		ID:       id,
		Owner:    s.Owner,
		Category: s.Category,
		Day:      s.Day,
		Total:    s.Total,
		Count:    s.Count,
	}, nil
}

func SummaryFromRemote(r remote.SummaryRecord, syncedAt time.Time) *models.DailySummary {
	s := syncedAt.UTC()
	return &models.DailySummary{
		ID:       r.ID,
		Owner:    r.Owner,
		Category: r.Category,
		Day:      r.Day,
		Total:    r.Total,
		Count:    r.Count,
		Derived:  true,
		SyncedAt: &s,
	}
}
