package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/config"
)

type stubCluster struct {
	failures int
	pings    int
	maxAge   time.Duration
	batch    int
}

func (s *stubCluster) Ping(context.Context) error {
	s.pings++
	if s.pings <= s.failures {
		return errors.New("not ready")
	}
	return nil
}

func (s *stubCluster) DeleteOlderThan(_ context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	s.maxAge, s.batch = maxAge, batchSize
	return 3, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWaitForClusterRetries(t *testing.T) {
	es := &stubCluster{failures: 2}
	require.NoError(t, waitForCluster(context.Background(), discard(), es, 5, time.Millisecond))
	require.Equal(t, 3, es.pings)
}

func TestWaitForClusterGivesUp(t *testing.T) {
	es := &stubCluster{failures: 10}
	require.Error(t, waitForCluster(context.Background(), discard(), es, 3, time.Millisecond))
	require.Equal(t, 3, es.pings)
}

func TestWaitForClusterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForCluster(ctx, discard(), &stubCluster{failures: 10}, 5, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunOnce(t *testing.T) {
	es := &stubCluster{}
	runOnce(context.Background(), discard(), es, &config.Retention{MaxAge: 48 * time.Hour, BatchSize: 100})
	require.Equal(t, 48*time.Hour, es.maxAge)
	require.Equal(t, 100, es.batch)
}
