package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"

	"chwadmin/internal/events"
)

// ErrNotFound is returned when an entity does not exist or was soft deleted.
var ErrNotFound = errors.New("entity not found")

// ErrConflict is returned when a unique value is already taken.
var ErrConflict = errors.New("entity already exists")

// ListQuery describes one page of a List call.
type ListQuery struct {
	Page     int
	Limit    int
	Filters  map[string]interface{}
	Excludes map[string]bool
	Sort     []string
	Order    string
	Includes []string
}

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T, includes ...string) error
	Get(ctx context.Context, id string, includes ...string) (*T, error)
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	Update(ctx context.Context, id string, entity *T, includes ...string) error
	Delete(ctx context.Context, id string) error
}

type identified interface {
	GetID() string
}

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
	table     string
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T) BaseService[T] {
	return &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
		table:     GormTableName(db, modelType),
	}
}

// applyIncludes adds preload statements to the query for each include
func (s *BaseServiceImpl[T]) applyIncludes(query *gorm.DB, includes ...string) *gorm.DB {
	for _, include := range includes {
		query = query.Preload(include)
	}
	return query
}

func (s *BaseServiceImpl[T]) applyExcludes(query *gorm.DB, excludes map[string]bool) *gorm.DB {
	for field := range excludes {
		query = query.Omit(field)
	}
	return query
}

func idOf(entity any) string {
	if e, ok := entity.(identified); ok {
		return e.GetID()
	}
	return ""
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T, includes ...string) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return err
	}

	// Reload the entity with includes if any are specified
	if len(includes) > 0 {
		if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", idOf(*entity)).Error; err != nil {
			return err
		}
	}

	events.Emit(fmt.Sprintf("%s.created", s.table), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string, includes ...string) (*T, error) {
	var entity T
	query := s.db.WithContext(ctx)
	query = s.applyIncludes(query, includes...)

	// filter deleted entities
	query = query.Where("is_deleted = ?", false)

	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (s *BaseServiceImpl[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(&s.modelType).Where("is_deleted = ?", false)

	// Apply filters
	for key, value := range q.Filters {
		query = query.Where(key+" = ?", value)
	}

	// Get total count before paging
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyIncludes(query, q.Includes...)
	query = s.applyExcludes(query, q.Excludes)

	if len(q.Sort) > 0 {
		order := "asc"
		if q.Order == "desc" {
			order = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", q.Sort[0], order))
	}

	// Apply pagination
	if q.Page > 0 && q.Limit > 0 {
		query = query.Offset((q.Page - 1) * q.Limit).Limit(q.Limit)
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, entity *T, includes ...string) error {
	res := s.db.WithContext(ctx).Model(entity).Where("id = ? AND is_deleted = ?", id, false).Omit("id", "created_at").Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	// Reload the entity so the response carries every column
	if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", id).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.updated", s.table), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&s.modelType).Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "is_deleted": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	events.Emit(fmt.Sprintf("%s.deleted", s.table), id)

	return nil
}
