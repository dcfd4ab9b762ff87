package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/access"
	"chwadmin/internal/events"
)

func cachedProfiles(t *testing.T) (*ProfileService, *access.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := access.NewCache(rdb, time.Minute)
	return NewProfileService(nil, cache), cache
}

func TestEffectiveServedFromCache(t *testing.T) {
	ctx := context.Background()
	profiles, cache := cachedProfiles(t)
	require.NoError(t, cache.Put(ctx, "u1", access.NewSet(access.ReadBooks)))

	// no database behind the service, so only a cache hit can answer
	set, err := profiles.Effective(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, set.Has(access.ReadBooks))
}

func TestRoleAndUserChangesInvalidateCachedSets(t *testing.T) {
	ctx := context.Background()
	profiles, cache := cachedProfiles(t)
	profiles.Subscribe()

	require.NoError(t, cache.Put(ctx, "u1", access.NewSet(access.ReadBooks)))
	require.NoError(t, cache.Put(ctx, "u2", access.NewSet(access.ReadUsers)))

	events.Emit(events.UserChanged, "u1")
	events.Wait()

	_, err := cache.Get(ctx, "u1")
	assert.ErrorIs(t, err, access.ErrCacheMiss)
	_, err = cache.Get(ctx, "u2")
	require.NoError(t, err)

	events.Emit(events.RolesChanged, "r1")
	events.Wait()

	_, err = cache.Get(ctx, "u2")
	assert.ErrorIs(t, err, access.ErrCacheMiss)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueIDs([]string{"a", "b", "a", "", "b"}))
	assert.Empty(t, uniqueIDs(nil))
}
