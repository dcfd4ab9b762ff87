package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"chwadmin/internal/config"
	"chwadmin/internal/tasks/rate"
	"chwadmin/internal/utils/logger"
)

// ErrThrottled is returned when a book was published too often recently.
var ErrThrottled = errors.New("publish rate limit exceeded")

// RedisOpt converts the Redis config into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewRedisClient opens a go-redis client with the same settings.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// TaskClient enqueues background work
type TaskClient struct {
	client  *asynq.Client
	limiter *rate.QueueRateLimiter
	logger  *logger.Logger
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// NewTaskClient creates a TaskClient. Publishing is throttled per book when
// rdb is non-nil.
func NewTaskClient(opt asynq.RedisClientOpt, rdb redis.UniversalClient, publish config.PublishConfig) *TaskClient {
	c := &TaskClient{
		client: asynq.NewClient(opt),
		logger: logger.New("TASKS"),
	}
	if rdb != nil {
		c.limiter = rate.NewQueueRateLimiter(rdb, rate.QueueConfig{
			Name:      TaskTypeBookPublish,
			RateLimit: rate.RateLimit{Window: publish.Window, MaxJobs: publish.MaxJobs},
		})
	}
	return c
}

// EnqueuePublish queues a book for publishing. Editor requests go through the
// per-book limiter; scheduled republishing does not.
func (c *TaskClient) EnqueuePublish(ctx context.Context, p PublishPayload, throttle bool) (*asynq.TaskInfo, error) {
	if throttle && c.limiter != nil {
		ok, err := c.limiter.Allow(ctx, p.BookID)
		if err != nil {
			c.logger.Warn("Publish limiter unavailable, letting %s through: %v", p.BookID, err)
		} else if !ok {
			return nil, fmt.Errorf("book %s: %w", p.BookID, ErrThrottled)
		}
	}

	queue := QueueCritical
	if !throttle {
		queue = QueueLow
	}
	task, err := NewPublishTask(p,
		asynq.Queue(queue),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutMedium),
	)
	if err != nil {
		return nil, err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, c.logger.Error("Failed to enqueue publish of book %s", err, p.BookID)
	}
	c.logger.Info("Queued publish of book %s as %s on %s", p.BookID, info.ID, info.Queue)
	return info, nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
