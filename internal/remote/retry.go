package remote

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// RetryOptions bounds the backoff applied to remote calls.
type RetryOptions struct {
	// Timeout caps each individual attempt.
	Timeout time.Duration
	// BaseDelay seeds the exponential backoff between attempts.
	BaseDelay time.Duration
	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration
	// Jitter randomizes each delay so devices waking on the same timer
	// cadence do not hammer the backend in lockstep.
	Jitter time.Duration
	// MaxRetries bounds attempts per call; transient failures beyond this
	// are surfaced and retried on the next sync cycle instead.
	MaxRetries uint64
}

func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Timeout:    15 * time.Second,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     500 * time.Millisecond,
		MaxRetries: 3,
	}
}

// RetryingStore decorates a Store with per-attempt timeouts and capped,
// jittered exponential backoff on transient failures. Safe because every
// Store write is an idempotent upsert.
type RetryingStore struct {
	inner Store
	opts  RetryOptions
}

func WithRetry(inner Store, opts RetryOptions) *RetryingStore {
	return &RetryingStore{inner: inner, opts: opts}
}

func (s *RetryingStore) backoff() retry.Backoff {
	b := retry.NewExponential(s.opts.BaseDelay)
	b = retry.WithCappedDuration(s.opts.MaxDelay, b)
	b = retry.WithJitter(s.opts.Jitter, b)
	return retry.WithMaxRetries(s.opts.MaxRetries, b)
}

func (s *RetryingStore) do(ctx context.Context, op func(ctx context.Context) error) error {
	return retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()

		err := op(attemptCtx)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isTransient classifies errors worth an in-call retry: timeouts, broken
// connections and backend resource pressure. Everything else fails fast.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code[:2] {
		case "08": // connection exception
			return true
		case "53": // insufficient resources
			return true
		case "57": // operator intervention (shutdown, cancel)
			return true
		}
		if pgErr.Code == "40001" { // serialization failure
			return true
		}
	}
	return false
}

func (s *RetryingStore) UpsertLogs(ctx context.Context, recs []LogRecord) (int, error) {
	var n int
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.inner.UpsertLogs(ctx, recs)
		return err
	})
	return n, err
}

func (s *RetryingStore) UpsertGoals(ctx context.Context, recs []GoalRecord) (int, error) {
	var n int
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.inner.UpsertGoals(ctx, recs)
		return err
	})
	return n, err
}

func (s *RetryingStore) UpsertPreferences(ctx context.Context, rec PreferencesRecord) error {
	return s.do(ctx, func(ctx context.Context) error {
		return s.inner.UpsertPreferences(ctx, rec)
	})
}

func (s *RetryingStore) UpsertSummaries(ctx context.Context, recs []SummaryRecord) (int, error) {
	var n int
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.inner.UpsertSummaries(ctx, recs)
		return err
	})
	return n, err
}

func (s *RetryingStore) Logs(ctx context.Context, owner string, page Page) ([]LogRecord, error) {
	var recs []LogRecord
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.inner.Logs(ctx, owner, page)
		return err
	})
	return recs, err
}

func (s *RetryingStore) Goals(ctx context.Context, owner string) ([]GoalRecord, error) {
	var recs []GoalRecord
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.inner.Goals(ctx, owner)
		return err
	})
	return recs, err
}

func (s *RetryingStore) Summaries(ctx context.Context, owner string, page Page) ([]SummaryRecord, error) {
	var recs []SummaryRecord
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		recs, err = s.inner.Summaries(ctx, owner, page)
		return err
	})
	return recs, err
}

func (s *RetryingStore) Preferences(ctx context.Context, owner string) (*PreferencesRecord, error) {
	var rec *PreferencesRecord
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.inner.Preferences(ctx, owner)
		return err
	})
	return rec, err
}

func (s *RetryingStore) PreferencesUpdatedAt(ctx context.Context, owner string) (*time.Time, error) {
	var t *time.Time
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.inner.PreferencesUpdatedAt(ctx, owner)
		return err
	})
	return t, err
}

func (s *RetryingStore) DeleteLogsBefore(ctx context.Context, owner string, cutoff time.Time) (int64, error) {
	var n int64
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.inner.DeleteLogsBefore(ctx, owner, cutoff)
		return err
	})
	return n, err
}
