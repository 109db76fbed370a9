package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/hespress-digest/internal/dedupe"
)

func seen(t *testing.T, s dedupe.Store, key string) bool {
	t.Helper()
	ok, err := s.IsSeen(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func mark(t *testing.T, s dedupe.Store, key string) {
	t.Helper()
	require.NoError(t, s.MarkSeen(context.Background(), key))
}

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, seen(t, cache, "alpha"))
	mark(t, cache, "alpha")
	require.True(t, seen(t, cache, "alpha"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.NewCache(10, 20*time.Millisecond)
	require.False(t, seen(t, cache, "beta"))
	mark(t, cache, "beta")
	time.Sleep(25 * time.Millisecond)
	require.False(t, seen(t, cache, "beta"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	require.False(t, seen(t, cache, "first"))
	mark(t, cache, "first")

	require.False(t, seen(t, cache, "second"))
	mark(t, cache, "second")

	require.False(t, seen(t, cache, "first"))
	require.True(t, seen(t, cache, "second"))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := dedupe.NewRedisStore(ctx, "redis://127.0.0.1:1/0", time.Minute)
	require.Error(t, err)
}
