package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCacheRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	require.NoError(t, SetCache(ctx, rdb, "k", map[string]string{"a": "b"}, time.Minute))
	require.True(t, mr.Exists("k"))

	var got map[string]string
	found, err := GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b", got["a"])

	require.NoError(t, DeleteCache(ctx, rdb, "k"))
	found, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteCachePattern(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("admin:users:page=1:size=20", "{}"))
	require.NoError(t, mr.Set("admin:users:page=2:size=20", "{}"))
	require.NoError(t, mr.Set("session:abc", "{}"))

	require.NoError(t, DeleteCachePattern(ctx, rdb, "admin:users:*"))

	keys, err := ScanKeys(ctx, rdb, "*")
	require.NoError(t, err)
	require.Equal(t, []string{"session:abc"}, keys)
}

func TestDeleteCachePatternNoMatches(t *testing.T) {
	_, rdb := newRedis(t)
	require.NoError(t, DeleteCachePattern(context.Background(), rdb, "nothing:*"))
}
