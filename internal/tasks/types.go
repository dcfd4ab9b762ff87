package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	// TaskTypeBookPublish renders one book and uploads the HTML.
	TaskTypeBookPublish = "book:publish"
	// TaskTypeBookRepublish re-queues every published book.
	TaskTypeBookRepublish = "book:republish"
)

// Task Queues
const (
	QueueCritical = "critical" // Editor-triggered publishes
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // Scheduled republishing
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// PublishPayload identifies the book to publish.
type PublishPayload struct {
	BookID      string `json:"bookId"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// NewPublishTask builds a book:publish task.
func NewPublishTask(p PublishPayload, opts ...asynq.Option) (*asynq.Task, error) {
	if p.BookID == "" {
		return nil, fmt.Errorf("publish task: book id is empty")
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("publish task: %w", err)
	}
	return asynq.NewTask(TaskTypeBookPublish, payload, opts...), nil
}

// ParsePublishPayload decodes the payload of a book:publish task.
func ParsePublishPayload(t *asynq.Task) (PublishPayload, error) {
	var p PublishPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode publish payload: %w", err)
	}
	if p.BookID == "" {
		return p, fmt.Errorf("publish payload has no book id")
	}
	return p, nil
}

// PublishedKey is the object key a book's HTML is stored under.
func PublishedKey(bookID string) string {
	return fmt.Sprintf("books/%s.html", bookID)
}
