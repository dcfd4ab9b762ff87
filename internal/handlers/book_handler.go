package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"chwadmin/internal/api/middleware"
	"chwadmin/internal/api/validator"
	"chwadmin/internal/content"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/tasks"
	"chwadmin/internal/utils/logger"
)

// BookEditor is the book service as seen by the HTTP layer.
type BookEditor interface {
	Content(ctx context.Context, id string) (*content.Book, error)
	SaveContent(ctx context.Context, id string, tree *content.Book, userID string) error
	InsertItem(ctx context.Context, id, userID string, path content.PagePath, ref int, kind content.Kind, after bool) (content.Item, error)
	InsertAtBeginning(ctx context.Context, id, userID string, path content.PagePath, kind content.Kind) (content.Item, error)
	UpdateItem(ctx context.Context, id, userID string, path content.PagePath, index int, item content.Item) error
	DeleteItem(ctx context.Context, id, userID string, path content.PagePath, index int) error
	MoveItem(ctx context.Context, id, userID string, path content.PagePath, from, to int) error
	Render(ctx context.Context, id string) (string, error)
	Create(ctx context.Context, title, description string, tree *content.Book, userID string) (*models.Book, error)
	UpdateDetails(ctx context.Context, id, userID, title, description string) (*models.Book, error)
	Status(ctx context.Context, id string) (models.PublishStatus, error)
	SetStatus(ctx context.Context, id string, status models.PublishStatus, key string) error
}

type BookHandler struct {
	books BookEditor
	queue tasks.Enqueuer
	log   *logger.Logger
}

func NewBookHandler(books BookEditor, queue tasks.Enqueuer) *BookHandler {
	return &BookHandler{books: books, queue: queue, log: logger.New("BookHandler")}
}

// CreateBookRequest creates a draft book, optionally with an initial tree.
type CreateBookRequest struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Content     *content.Book `json:"content,omitempty"`
}

// UpdateBookRequest edits book details. Content and status are not part of
// it: the tree changes through the content endpoints and the status through
// publishing.
type UpdateBookRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// InsertItemRequest adds a blank item next to Ref on the page at Path, or at
// the top of the page when AtBeginning is set.
type InsertItemRequest struct {
	Path        content.PagePath `json:"path"`
	Ref         int              `json:"ref"`
	Type        string           `json:"type" validate:"required,content_kind"`
	After       bool             `json:"after"`
	AtBeginning bool             `json:"atBeginning"`
}

type UpdateItemRequest struct {
	Path content.PagePath `json:"path"`
	Item content.Item     `json:"item"`
}

type DeleteItemRequest struct {
	Path  content.PagePath `json:"path"`
	Index int              `json:"index"`
}

type MoveItemRequest struct {
	Path content.PagePath `json:"path"`
	From int              `json:"from"`
	To   int              `json:"to"`
}

// bookError maps book service errors onto HTTP errors.
func (h *BookHandler) bookError(err error) error {
	var ve playgroundvalidator.ValidationErrors
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "book not found")
	case errors.Is(err, content.ErrIndexOutOfRange), errors.Is(err, content.ErrUnknownKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return h.log.Error("Book operation failed", err)
	}
}

// CreateBook stores a new draft book.
// @Summary Create book
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateBookRequest true "Book"
// @Success 201 {object} models.Book
// @Failure 400 {object} map[string]string "Invalid book"
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	var req CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid book: "+err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}
	book, err := h.books.Create(c.Request().Context(), req.Title, req.Description, req.Content, middleware.GetUserID(c))
	if err != nil {
		return h.bookError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

// UpdateBook changes the title and description of a book.
// @Summary Update book details
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body UpdateBookRequest true "Details"
// @Success 200 {object} models.Book
// @Failure 404 {object} map[string]string "Not found"
// @Router /books/{id} [put]
func (h *BookHandler) UpdateBook(c echo.Context) error {
	var req UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}
	book, err := h.books.UpdateDetails(c.Request().Context(), c.Param("id"), middleware.GetUserID(c), req.Title, req.Description)
	if err != nil {
		return h.bookError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// GetContent returns the whole content tree of a book.
// @Summary Get book content
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} content.Book
// @Failure 404 {object} map[string]string "Not found"
// @Router /books/{id}/content [get]
func (h *BookHandler) GetContent(c echo.Context) error {
	tree, err := h.books.Content(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.bookError(err)
	}
	return c.JSON(http.StatusOK, tree)
}

// PutContent replaces the whole content tree of a book.
// @Summary Save book content
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param content body content.Book true "Content tree"
// @Success 200 {object} content.Book
// @Failure 400 {object} map[string]string "Invalid tree"
// @Failure 404 {object} map[string]string "Not found"
// @Router /books/{id}/content [put]
func (h *BookHandler) PutContent(c echo.Context) error {
	var tree content.Book
	if err := c.Bind(&tree); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid content tree: "+err.Error())
	}
	if err := h.books.SaveContent(c.Request().Context(), c.Param("id"), &tree, middleware.GetUserID(c)); err != nil {
		return h.bookError(err)
	}
	return c.JSON(http.StatusOK, tree)
}

// Render returns the book as HTML in reading order.
// @Summary Render book
// @Tags books
// @Security BearerAuth
// @Produce html
// @Param id path string true "Book ID"
// @Success 200 {string} string "HTML"
// @Router /books/{id}/render [get]
func (h *BookHandler) Render(c echo.Context) error {
	html, err := h.books.Render(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.bookError(err)
	}
	return c.HTML(http.StatusOK, html)
}

// InsertItem adds a blank item to a page.
// @Summary Insert content item
// @Tags books
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param request body InsertItemRequest true "Position and type"
// @Success 201 {object} content.Item
// @Failure 400 {object} map[string]string "Bad position or type"
// @Router /books/{id}/items [post]
func (h *BookHandler) InsertItem(c echo.Context) error {
	var req InsertItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	ctx, id, userID := c.Request().Context(), c.Param("id"), middleware.GetUserID(c)
	var (
		item content.Item
		err  error
	)
	if req.AtBeginning {
		item, err = h.books.InsertAtBeginning(ctx, id, userID, req.Path, content.Kind(req.Type))
	} else {
		item, err = h.books.InsertItem(ctx, id, userID, req.Path, req.Ref, content.Kind(req.Type), req.After)
	}
	if err != nil {
		return h.bookError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem replaces one item of a page.
// @Summary Update content item
// @Tags books
// @Security BearerAuth
// @Accept json
// @Param id path string true "Book ID"
// @Param index path int true "Item index"
// @Param request body UpdateItemRequest true "Page and item"
// @Success 204 "No content"
// @Router /books/{id}/items/{index} [put]
func (h *BookHandler) UpdateItem(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "index must be a number")
	}
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.books.UpdateItem(c.Request().Context(), c.Param("id"), middleware.GetUserID(c), req.Path, index, req.Item); err != nil {
		return h.bookError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteItem removes one item of a page.
// @Summary Delete content item
// @Tags books
// @Security BearerAuth
// @Accept json
// @Param id path string true "Book ID"
// @Param request body DeleteItemRequest true "Page and index"
// @Success 204 "No content"
// @Router /books/{id}/items [delete]
func (h *BookHandler) DeleteItem(c echo.Context) error {
	var req DeleteItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.books.DeleteItem(c.Request().Context(), c.Param("id"), middleware.GetUserID(c), req.Path, req.Index); err != nil {
		return h.bookError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveItem reorders an item within a page.
// @Summary Move content item
// @Tags books
// @Security BearerAuth
// @Accept json
// @Param id path string true "Book ID"
// @Param request body MoveItemRequest true "Page, from and to"
// @Success 204 "No content"
// @Router /books/{id}/items/move [post]
func (h *BookHandler) MoveItem(c echo.Context) error {
	var req MoveItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.books.MoveItem(c.Request().Context(), c.Param("id"), middleware.GetUserID(c), req.Path, req.From, req.To); err != nil {
		return h.bookError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Publish queues the book for rendering and upload.
// @Summary Publish book
// @Tags books
// @Security BearerAuth
// @Produce json
// @Param id path string true "Book ID"
// @Success 202 {object} map[string]string "Queued"
// @Failure 429 {object} map[string]string "Published too often"
// @Router /books/{id}/publish [post]
func (h *BookHandler) Publish(c echo.Context) error {
	ctx, id := c.Request().Context(), c.Param("id")

	prev, err := h.books.Status(ctx, id)
	if err != nil {
		return h.bookError(err)
	}

	// QUEUED goes in before the task does; the worker may finish first.
	if err := h.books.SetStatus(ctx, id, models.PublishStatusQueued, ""); err != nil {
		return h.bookError(err)
	}

	info, err := h.queue.EnqueuePublish(ctx, tasks.PublishPayload{BookID: id, RequestedBy: middleware.GetUserID(c)}, true)
	if err != nil {
		if rerr := h.books.SetStatus(ctx, id, prev, ""); rerr != nil {
			h.log.Warn("Failed to restore status %s of book %s: %v", prev, id, rerr)
		}
		if errors.Is(err, tasks.ErrThrottled) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "book was published too recently, try again later")
		}
		return h.log.Error("Failed to queue publish", err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"status": string(models.PublishStatusQueued),
		"taskId": taskID(info),
	})
}

func taskID(info *asynq.TaskInfo) string {
	if info == nil {
		return ""
	}
	return info.ID
}
