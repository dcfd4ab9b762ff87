package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterAllowsWithoutRedis(t *testing.T) {
	l := NewQueueRateLimiter(nil, QueueConfig{Name: "book:publish"})
	ok, err := l.Allow(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKey(t *testing.T) {
	l := NewQueueRateLimiter(nil, QueueConfig{Name: "book:publish", RateLimit: RateLimit{Window: time.Minute, MaxJobs: 1}})
	assert.Equal(t, "queue_rate_limit:book:publish:b1", l.Key("b1"))
}
