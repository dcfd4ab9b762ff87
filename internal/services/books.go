package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chwadmin/internal/content"
	"chwadmin/internal/events"
	"chwadmin/internal/models"
	"chwadmin/internal/utils/logger"
)

// BookService loads and saves e-book content trees wholesale.
type BookService struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewBookService(db *gorm.DB) *BookService {
	return &BookService{
		db:     db,
		logger: logger.New("book_service"),
	}
}

func (s *BookService) find(tx *gorm.DB, id string) (*models.Book, error) {
	var book models.Book
	if err := tx.Where("id = ? AND is_deleted = ?", id, false).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// decode returns the stored tree, or an empty tree titled after the book.
func decode(book *models.Book) (*content.Book, error) {
	tree := &content.Book{Title: book.Title}
	if len(book.Content) == 0 || string(book.Content) == "null" {
		return tree, nil
	}
	if err := json.Unmarshal(book.Content, tree); err != nil {
		return nil, fmt.Errorf("decode content of book %s: %w", book.ID, err)
	}
	return tree, nil
}

// Create stores a new draft book. A nil tree starts the book empty. The tree
// passes the same validation as SaveContent before anything is written.
func (s *BookService) Create(ctx context.Context, title, description string, tree *content.Book, userID string) (*models.Book, error) {
	if tree == nil {
		tree = &content.Book{}
	}
	tree.Title = title
	tree.EnsureDefaults()
	if err := content.Validate(tree); err != nil {
		return nil, err
	}

	book := &models.Book{Title: title, Description: description, Status: models.PublishStatusDraft}
	if userID != "" {
		book.UpdatedByID = &userID
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(book).Error; err != nil {
			return err
		}
		return s.store(tx, book, tree, userID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created book %s (%d pages)", book.ID, tree.PageCount())
	events.Emit(events.BookSaved, book.ID)
	return s.find(s.db.WithContext(ctx), book.ID)
}

// UpdateDetails changes the title and description of a book. The title is
// kept in step with the stored tree; the tree itself is left as is.
func (s *BookService) UpdateDetails(ctx context.Context, id, userID, title, description string) (*models.Book, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		tree, err := decode(book)
		if err != nil {
			return err
		}
		tree.Title = title
		if err := tx.Model(book).Update("description", description).Error; err != nil {
			return err
		}
		return s.store(tx, book, tree, userID)
	})
	if err != nil {
		return nil, err
	}
	events.Emit(events.BookSaved, id)
	return s.find(s.db.WithContext(ctx), id)
}

// Status returns the publish status of a book.
func (s *BookService) Status(ctx context.Context, id string) (models.PublishStatus, error) {
	book, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return "", err
	}
	return book.Status, nil
}

// Content returns the content tree of a book.
func (s *BookService) Content(ctx context.Context, id string) (*content.Book, error) {
	book, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return decode(book)
}

func (s *BookService) store(tx *gorm.DB, book *models.Book, tree *content.Book, userID string) error {
	tree.EnsureDefaults()
	if err := content.Validate(tree); err != nil {
		return err
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	updates := map[string]interface{}{
		"content": datatypes.JSON(raw),
		"title":   tree.Title,
	}
	if userID != "" {
		updates["updated_by_id"] = userID
	}
	if book.Status == models.PublishStatusPublished {
		updates["status"] = models.PublishStatusDraft
	}
	return tx.Model(book).Updates(updates).Error
}

// SaveContent replaces the content tree of a book.
func (s *BookService) SaveContent(ctx context.Context, id string, tree *content.Book, userID string) error {
	book, err := s.find(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if err := s.store(s.db.WithContext(ctx), book, tree, userID); err != nil {
		return err
	}
	s.logger.Info("Saved content of book %s (%d pages)", id, tree.PageCount())
	events.Emit(events.BookSaved, id)
	return nil
}

// Edit loads the tree, applies fn and saves the result in one transaction.
// Nothing is written when fn fails.
func (s *BookService) Edit(ctx context.Context, id, userID string, fn func(*content.Book) error) (*content.Book, error) {
	var tree *content.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if tree, err = decode(book); err != nil {
			return err
		}
		if err := fn(tree); err != nil {
			return err
		}
		return s.store(tx, book, tree, userID)
	})
	if err != nil {
		return nil, err
	}
	events.Emit(events.BookSaved, id)
	return tree, nil
}

// InsertItem adds a blank item next to ref on the page at path.
func (s *BookService) InsertItem(ctx context.Context, id, userID string, path content.PagePath, ref int, kind content.Kind, after bool) (content.Item, error) {
	var inserted content.Item
	_, err := s.Edit(ctx, id, userID, func(tree *content.Book) error {
		page, err := tree.Locate(path)
		if err != nil {
			return err
		}
		inserted, err = content.InsertItem(page, ref, kind, after)
		return err
	})
	return inserted, err
}

// InsertAtBeginning puts a blank item at the top of the page at path.
func (s *BookService) InsertAtBeginning(ctx context.Context, id, userID string, path content.PagePath, kind content.Kind) (content.Item, error) {
	var inserted content.Item
	_, err := s.Edit(ctx, id, userID, func(tree *content.Book) error {
		page, err := tree.Locate(path)
		if err != nil {
			return err
		}
		inserted, err = content.InsertAtBeginning(page, kind)
		return err
	})
	return inserted, err
}

// UpdateItem replaces the item at index on the page at path.
func (s *BookService) UpdateItem(ctx context.Context, id, userID string, path content.PagePath, index int, item content.Item) error {
	_, err := s.Edit(ctx, id, userID, func(tree *content.Book) error {
		page, err := tree.Locate(path)
		if err != nil {
			return err
		}
		return content.UpdateItem(page, index, item)
	})
	return err
}

// DeleteItem removes the item at index on the page at path.
func (s *BookService) DeleteItem(ctx context.Context, id, userID string, path content.PagePath, index int) error {
	_, err := s.Edit(ctx, id, userID, func(tree *content.Book) error {
		page, err := tree.Locate(path)
		if err != nil {
			return err
		}
		_, err = content.DeleteItem(page, index)
		return err
	})
	return err
}

// MoveItem reorders an item within the page at path.
func (s *BookService) MoveItem(ctx context.Context, id, userID string, path content.PagePath, from, to int) error {
	_, err := s.Edit(ctx, id, userID, func(tree *content.Book) error {
		page, err := tree.Locate(path)
		if err != nil {
			return err
		}
		return content.MoveItem(page, from, to)
	})
	return err
}

// Render returns the HTML of the whole book.
func (s *BookService) Render(ctx context.Context, id string) (string, error) {
	tree, err := s.Content(ctx, id)
	if err != nil {
		return "", err
	}
	return content.RenderBook(tree), nil
}

// SetStatus records the outcome of a publish attempt. The published key and
// time are only touched when a key is given.
func (s *BookService) SetStatus(ctx context.Context, id string, status models.PublishStatus, key string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.PublishStatusPublished && key != "" {
		now := time.Now()
		updates["published_key"] = key
		updates["published_at"] = &now
	}
	res := s.db.WithContext(ctx).Model(&models.Book{}).Where("id = ? AND is_deleted = ?", id, false).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishedIDs lists the books currently marked published.
func (s *BookService) PublishedIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Book{}).
		Where("status = ? AND is_deleted = ?", models.PublishStatusPublished, false).
		Pluck("id", &ids).Error
	return ids, err
}
