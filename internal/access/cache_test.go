package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/access"
)

func newCache(t *testing.T, ttl time.Duration) (*access.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return access.NewCache(rdb, ttl), mr
}

func TestCachePutGet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t, time.Minute)

	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, access.ErrCacheMiss)

	require.NoError(t, cache.Put(ctx, "u1", access.NewSet(access.ReadBooks, access.WriteBooks)))
	set, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, set.HasAll([]access.Permission{access.ReadBooks, access.WriteBooks}))
	assert.False(t, set.Has(access.ReadUsers))

	require.NoError(t, cache.Put(ctx, "empty", access.NewSet()))
	set, err = cache.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestCacheEntriesExpire(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)

	require.NoError(t, cache.Put(ctx, "u1", access.NewSet(access.ReadBooks)))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, access.ErrCacheMiss)
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set("unrelated", "keep"))

	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, cache.Put(ctx, id, access.NewSet(access.ReadRoles)))
	}

	require.NoError(t, cache.Invalidate(ctx, "u1"))
	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, access.ErrCacheMiss)
	_, err = cache.Get(ctx, "u2")
	assert.NoError(t, err)

	require.NoError(t, cache.InvalidateAll(ctx))
	for _, id := range []string{"u2", "u3"} {
		_, err := cache.Get(ctx, id)
		assert.ErrorIs(t, err, access.ErrCacheMiss)
	}
	assert.True(t, mr.Exists("unrelated"))
}
