package remote

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and offline development.
// It mirrors the backend's upsert and pagination semantics.
type MemoryStore struct {
	mu        sync.Mutex
	logs      map[string]LogRecord
	goals     map[string]GoalRecord // keyed by owner|category
	prefs     map[string]PreferencesRecord
	summaries map[string]SummaryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:      make(map[string]LogRecord),
		goals:     make(map[string]GoalRecord),
		prefs:     make(map[string]PreferencesRecord),
		summaries: make(map[string]SummaryRecord),
	}
}

func (s *MemoryStore) UpsertLogs(_ context.Context, recs []LogRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.logs[r.ID] = r
	}
	return len(recs), nil
}

func (s *MemoryStore) UpsertGoals(_ context.Context, recs []GoalRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		key := r.Owner + "|" + r.Category
		if existing, ok := s.goals[key]; ok {
			// first writer's id survives, fields update
			r.ID = existing.ID
		}
		s.goals[key] = r
	}
	return len(recs), nil
}

func (s *MemoryStore) UpsertPreferences(_ context.Context, rec PreferencesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[rec.Owner] = rec
	return nil
}

func (s *MemoryStore) UpsertSummaries(_ context.Context, recs []SummaryRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.summaries[r.ID] = r
	}
	return len(recs), nil
}

func (s *MemoryStore) Logs(_ context.Context, owner string, page Page) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []LogRecord
	for _, r := range s.logs {
		if r.Owner == owner {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EventTime.After(all[j].EventTime) })
	return paginate(all, page), nil
}

func (s *MemoryStore) Goals(_ context.Context, owner string) ([]GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []GoalRecord
	for _, r := range s.goals {
		if r.Owner == owner {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Category < all[j].Category })
	return all, nil
}

func (s *MemoryStore) Summaries(_ context.Context, owner string, page Page) ([]SummaryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []SummaryRecord
	for _, r := range s.summaries {
		if r.Owner == owner {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Day > all[j].Day })
	return paginate(all, page), nil
}

func (s *MemoryStore) Preferences(_ context.Context, owner string) (*PreferencesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.prefs[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) PreferencesUpdatedAt(_ context.Context, owner string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.prefs[owner]
	if !ok {
		return nil, nil
	}
	t := rec.UpdatedAt
	return &t, nil
}

func (s *MemoryStore) DeleteLogsBefore(_ context.Context, owner string, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.logs {
		if r.Owner == owner && r.EventTime.Before(cutoff) {
			delete(s.logs, id)
			n++
		}
	}
	return n, nil
}

// LogCount reports the number of stored logs for owner; test helper.
func (s *MemoryStore) LogCount(owner string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.logs {
		if r.Owner == owner {
			n++
		}
	}
	return n
}

func paginate[T any](all []T, page Page) []T {
	if page.Offset >= len(all) {
		return nil
	}
	end := page.Offset + page.Limit
	if page.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end]
}
