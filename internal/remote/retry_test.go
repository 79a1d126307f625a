package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first failures calls of every method with err, then
// delegates to the inner store.
type flakyStore struct {
	Store
	failures int
	err      error
	calls    int
}

func (f *flakyStore) UpsertLogs(ctx context.Context, recs []LogRecord) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, f.err
	}
	return f.Store.UpsertLogs(ctx, recs)
}

func fastRetryOptions() RetryOptions {
	return RetryOptions{
		Timeout:    time.Second,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Jitter:     time.Millisecond,
		MaxRetries: 3,
	}
}

func TestRetryingStore_RetriesTransientErrors(t *testing.T) {
	inner := &flakyStore{
		Store:    NewMemoryStore(),
		failures: 2,
		err:      &pgconn.PgError{Code: "53300"}, // too many connections
	}
	s := WithRetry(inner, fastRetryOptions())

	n, err := s.UpsertLogs(context.Background(), []LogRecord{{ID: "a", Owner: "o"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, inner.calls, "two transient failures then success")
}

func TestRetryingStore_GivesUpAfterMaxRetries(t *testing.T) {
	inner := &flakyStore{
		Store:    NewMemoryStore(),
		failures: 100,
		err:      &pgconn.PgError{Code: "08006"}, // connection failure
	}
	s := WithRetry(inner, fastRetryOptions())

	_, err := s.UpsertLogs(context.Background(), []LogRecord{{ID: "a", Owner: "o"}})
	require.Error(t, err)
	assert.Equal(t, 4, inner.calls, "initial attempt plus three retries")
}

func TestRetryingStore_DoesNotRetryPermanentErrors(t *testing.T) {
	inner := &flakyStore{
		Store:    NewMemoryStore(),
		failures: 100,
		err:      errors.New("constraint violation"),
	}
	s := WithRetry(inner, fastRetryOptions())

	_, err := s.UpsertLogs(context.Background(), []LogRecord{{ID: "a", Owner: "o"}})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "permanent errors fail fast")
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline", context.DeadlineExceeded, true},
		{"pg connection", &pgconn.PgError{Code: "08006"}, true},
		{"pg resources", &pgconn.PgError{Code: "53300"}, true},
		{"pg shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, true},
		{"pg constraint", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("nope"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isTransient(tc.err))
		})
	}
}
