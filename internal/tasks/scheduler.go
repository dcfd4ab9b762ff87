package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"chwadmin/internal/utils/logger"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler         *asynq.Scheduler
	logger            *logger.Logger
	republishSchedule string
}

// NewScheduler creates a new task scheduler. An empty republishSchedule
// disables nightly republishing.
func NewScheduler(opt asynq.RedisClientOpt, republishSchedule string, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	return &Scheduler{
		scheduler:         scheduler,
		logger:            logger,
		republishSchedule: republishSchedule,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	if s.republishSchedule != "" {
		if err := s.RegisterCustomTask(s.republishSchedule, TaskTypeBookRepublish, nil,
			asynq.Queue(QueueLow), asynq.MaxRetry(RetryMin), asynq.Timeout(TimeoutLong)); err != nil {
			return err
		}
	}
	s.logger.Info("registered all periodic tasks")
	return nil
}

// RegisterCustomTask registers a periodic task after checking its schedule.
func (s *Scheduler) RegisterCustomTask(spec string, taskType string, payload []byte, opts ...asynq.Option) error {
	next, err := NextRun(spec, time.Now())
	if err != nil {
		return fmt.Errorf("failed to register custom task %s: %w", taskType, err)
	}

	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, payload, opts...))
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s, next run %s", taskType, spec, entryID, next.Format(time.RFC3339))
	return nil
}
