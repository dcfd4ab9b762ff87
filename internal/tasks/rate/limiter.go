package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimit struct {
	Window  time.Duration // e.g., 1 minute, 1 hour
	MaxJobs int           // max jobs per window
}

type QueueConfig struct {
	Name      string
	RateLimit RateLimit
}

// QueueRateLimiter is a sliding-window limiter keyed by queue name and
// identifier, backed by a Redis sorted set.
type QueueRateLimiter struct {
	redis  redis.UniversalClient
	config QueueConfig
	now    func() time.Time
}

func NewQueueRateLimiter(client redis.UniversalClient, config QueueConfig) *QueueRateLimiter {
	return &QueueRateLimiter{
		redis:  client,
		config: config,
		now:    time.Now,
	}
}

// Key returns the Redis key used for identifier.
func (qrl *QueueRateLimiter) Key(identifier string) string {
	return fmt.Sprintf("queue_rate_limit:%s:%s", qrl.config.Name, identifier)
}

// Allow records an attempt for identifier and reports whether it fits in the window.
func (qrl *QueueRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	if qrl.config.RateLimit.MaxJobs <= 0 || qrl.config.RateLimit.Window <= 0 {
		return true, nil
	}
	key := qrl.Key(identifier)

	pipe := qrl.redis.Pipeline()
	now := qrl.now()
	windowStart := now.Add(-qrl.config.RateLimit.Window).UnixNano()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count current window
	card := pipe.ZCard(ctx, key)

	// Add new entry
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})

	// Set expiration
	pipe.Expire(ctx, key, qrl.config.RateLimit.Window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis pipeline error: %w", err)
	}

	return card.Val() < int64(qrl.config.RateLimit.MaxJobs), nil
}
