package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"

	"chwadmin/internal/events"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/utils/logger"
)

// BookSource is what the publisher needs from the book service.
type BookSource interface {
	Render(ctx context.Context, id string) (string, error)
	SetStatus(ctx context.Context, id string, status models.PublishStatus, key string) error
	PublishedIDs(ctx context.Context) ([]string, error)
}

// ObjectStore stores rendered books.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, acl types.ObjectCannedACL, contentType string) (string, error)
}

// Enqueuer queues publish tasks.
type Enqueuer interface {
	EnqueuePublish(ctx context.Context, p PublishPayload, throttle bool) (*asynq.TaskInfo, error)
}

// TaskHandler processes book tasks
type TaskHandler struct {
	books  BookSource
	store  ObjectStore
	queue  Enqueuer
	logger *logger.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(books BookSource, store ObjectStore, queue Enqueuer) *TaskHandler {
	return &TaskHandler{
		books:  books,
		store:  store,
		queue:  queue,
		logger: logger.New("task_handler"),
	}
}

// HandleBookPublish renders a book and uploads the HTML.
func (h *TaskHandler) HandleBookPublish(ctx context.Context, t *asynq.Task) error {
	p, err := ParsePublishPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	html, err := h.books.Render(ctx, p.BookID)
	if errors.Is(err, services.ErrNotFound) {
		h.logger.Warn("Book %s disappeared before publishing", p.BookID)
		return fmt.Errorf("book %s: %w", p.BookID, asynq.SkipRetry)
	}
	if err != nil {
		return h.fail(ctx, p.BookID, "render", err)
	}

	key := PublishedKey(p.BookID)
	url, err := h.store.Put(ctx, key, []byte(html), types.ObjectCannedACLPublicRead, "text/html; charset=utf-8")
	if err != nil {
		return h.fail(ctx, p.BookID, "upload", err)
	}

	if err := h.books.SetStatus(ctx, p.BookID, models.PublishStatusPublished, key); err != nil {
		return h.logger.Error("Failed to mark book %s published", err, p.BookID)
	}

	h.logger.Success("Published book %s to %s", p.BookID, url)
	events.Emit(events.BookPublished, p.BookID)
	return nil
}

func (h *TaskHandler) fail(ctx context.Context, bookID, step string, cause error) error {
	if err := h.books.SetStatus(ctx, bookID, models.PublishStatusFailed, ""); err != nil {
		h.logger.Warn("Could not mark book %s failed: %v", bookID, err)
	}
	events.Emit(events.BookPublishErr, bookID)
	return h.logger.Error("Failed to %s book %s", cause, step, bookID)
}

// HandleBookRepublish queues a publish of every published book so the stored
// HTML follows renderer changes.
func (h *TaskHandler) HandleBookRepublish(ctx context.Context, _ *asynq.Task) error {
	ids, err := h.books.PublishedIDs(ctx)
	if err != nil {
		return h.logger.Error("Failed to list published books", err)
	}

	var failed int
	for _, id := range ids {
		if _, err := h.queue.EnqueuePublish(ctx, PublishPayload{BookID: id}, false); err != nil {
			failed++
			h.logger.Warn("Could not queue republish of %s: %v", id, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("republish: %d of %d books not queued", failed, len(ids))
	}
	h.logger.Info("Queued republish of %d books", len(ids))
	return nil
}
