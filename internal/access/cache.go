package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheNamespace = "access:effective"

// ErrCacheMiss is returned by Cache.Get when no set is stored for a user.
var ErrCacheMiss = errors.New("access: cache miss")

// Cache stores effective permission sets per user in Redis. Entries must be
// invalidated whenever a user's roles or a role's permissions change.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCache wraps client. A zero ttl defaults to five minutes.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(userID string) string {
	return cacheNamespace + ":" + userID
}

// Get returns the cached set for userID or ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, userID string) (Set, error) {
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var perms []Permission
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, fmt.Errorf("decode cached set: %w", err)
	}
	return NewSet(perms...), nil
}

// Put stores s for userID.
func (c *Cache) Put(ctx context.Context, userID string, s Set) error {
	data, err := json.Marshal(s.Sorted())
	if err != nil {
		return fmt.Errorf("encode set: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the cached set for each user id.
func (c *Cache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = cacheKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateAll drops every cached set, used when a role's permissions change.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheNamespace+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
