package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/models"
	"chwadmin/internal/services"
)

type fakeBooks struct {
	mu        sync.Mutex
	html      map[string]string
	renderErr error
	statuses  map[string]models.PublishStatus
	keys      map[string]string
	published []string
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{
		html:     map[string]string{"b1": "<h1>Book</h1>"},
		statuses: map[string]models.PublishStatus{},
		keys:     map[string]string{},
	}
}

func (f *fakeBooks) Render(_ context.Context, id string) (string, error) {
	if f.renderErr != nil {
		return "", f.renderErr
	}
	html, ok := f.html[id]
	if !ok {
		return "", services.ErrNotFound
	}
	return html, nil
}

func (f *fakeBooks) SetStatus(_ context.Context, id string, status models.PublishStatus, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	f.keys[id] = key
	return nil
}

func (f *fakeBooks) PublishedIDs(context.Context) ([]string, error) { return f.published, nil }

type fakeStore struct {
	puts map[string]string
	err  error
	ct   string
}

func (f *fakeStore) Put(_ context.Context, key string, body []byte, _ types.ObjectCannedACL, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.puts[key] = string(body)
	f.ct = contentType
	return "https://cdn.example/" + key, nil
}

type fakeQueue struct {
	queued []PublishPayload
	fail   map[string]bool
}

func (f *fakeQueue) EnqueuePublish(_ context.Context, p PublishPayload, throttle bool) (*asynq.TaskInfo, error) {
	if throttle {
		return nil, errors.New("scheduled republish must not be throttled")
	}
	if f.fail[p.BookID] {
		return nil, errors.New("redis down")
	}
	f.queued = append(f.queued, p)
	return &asynq.TaskInfo{ID: p.BookID}, nil
}

func publishTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	task, err := NewPublishTask(PublishPayload{BookID: id})
	require.NoError(t, err)
	return task
}

func TestHandleBookPublish(t *testing.T) {
	books, store := newFakeBooks(), &fakeStore{puts: map[string]string{}}
	h := NewTaskHandler(books, store, &fakeQueue{})

	require.NoError(t, h.HandleBookPublish(context.Background(), publishTask(t, "b1")))
	assert.Equal(t, "<h1>Book</h1>", store.puts["books/b1.html"])
	assert.Equal(t, "text/html; charset=utf-8", store.ct)
	assert.Equal(t, models.PublishStatusPublished, books.statuses["b1"])
	assert.Equal(t, "books/b1.html", books.keys["b1"])
}

func TestHandleBookPublishMissingBookSkipsRetry(t *testing.T) {
	h := NewTaskHandler(newFakeBooks(), &fakeStore{puts: map[string]string{}}, &fakeQueue{})
	err := h.HandleBookPublish(context.Background(), publishTask(t, "gone"))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleBookPublishBadPayloadSkipsRetry(t *testing.T) {
	h := NewTaskHandler(newFakeBooks(), &fakeStore{puts: map[string]string{}}, &fakeQueue{})
	err := h.HandleBookPublish(context.Background(), asynq.NewTask(TaskTypeBookPublish, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleBookPublishUploadFailureMarksFailed(t *testing.T) {
	books := newFakeBooks()
	h := NewTaskHandler(books, &fakeStore{err: errors.New("s3 down")}, &fakeQueue{})

	err := h.HandleBookPublish(context.Background(), publishTask(t, "b1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, models.PublishStatusFailed, books.statuses["b1"])
}

func TestHandleBookRepublish(t *testing.T) {
	books := newFakeBooks()
	books.published = []string{"b1", "b2"}
	queue := &fakeQueue{}
	h := NewTaskHandler(books, &fakeStore{puts: map[string]string{}}, queue)

	require.NoError(t, h.HandleBookRepublish(context.Background(), asynq.NewTask(TaskTypeBookRepublish, nil)))
	assert.Equal(t, []PublishPayload{{BookID: "b1"}, {BookID: "b2"}}, queue.queued)

	queue = &fakeQueue{fail: map[string]bool{"b2": true}}
	h = NewTaskHandler(books, &fakeStore{puts: map[string]string{}}, queue)
	assert.Error(t, h.HandleBookRepublish(context.Background(), asynq.NewTask(TaskTypeBookRepublish, nil)))
	assert.Len(t, queue.queued, 1)
}

func TestPublishPayload(t *testing.T) {
	_, err := NewPublishTask(PublishPayload{})
	assert.Error(t, err)

	task := publishTask(t, "b9")
	assert.Equal(t, TaskTypeBookPublish, task.Type())
	p, err := ParsePublishPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "b9", p.BookID)
}

func TestSchedules(t *testing.T) {
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	next, err := NextRun("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), next)

	_, err = ParseSchedule("every night")
	assert.Error(t, err)
}
