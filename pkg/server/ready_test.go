package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthServer(t *testing.T, unhealthyPolls int32) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if atomic.AddInt32(&calls, 1) <= unhealthyPolls {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestReadyCheck_WaitsForHealthy(t *testing.T) {
	srv, calls := healthServer(t, 2)

	var retried []int
	check := ReadyCheck{
		Interval: time.Millisecond,
		Attempts: 5,
		OnRetry:  func(attempt int, err error) { retried = append(retried, attempt) },
	}
	require.NoError(t, check.Wait(context.Background(), srv.URL+"/"))
	assert.EqualValues(t, 3, atomic.LoadInt32(calls))
	assert.Equal(t, []int{1, 2}, retried)
}

func TestReadyCheck_GivesUpAfterAttempts(t *testing.T) {
	srv, calls := healthServer(t, 100)

	err := ReadyCheck{Interval: time.Millisecond, Attempts: 2}.Wait(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "health returned 503")
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestReadyCheck_StopsWithContext(t *testing.T) {
	srv, _ := healthServer(t, 1<<30)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := ReadyCheck{Interval: 10 * time.Millisecond}.Wait(ctx, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
