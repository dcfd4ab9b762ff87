package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm/schema"

	"chwadmin/internal/api/validator"
	"chwadmin/internal/services"
)

var naming = schema.NamingStrategy{}

// reserved query parameters that never become column filters
var reserved = map[string]bool{
	"page": true, "limit": true, "include": true, "exclude": true, "sort": true, "order": true,
}

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// splitParam splits a comma separated query parameter, dropping blanks.
func splitParam(ctx echo.Context, name string) []string {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// serviceError maps service errors onto HTTP errors.
func serviceError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}

	if err := ctx.Validate(&entity); err != nil {
		return validator.HTTPError(err)
	}

	if err := c.service.Create(ctx.Request().Context(), &entity, splitParam(ctx, "include")...); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	entity, err := c.service.Get(ctx.Request().Context(), id, splitParam(ctx, "include")...)
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(http.StatusOK, entity)
}

// ListQuery builds a services.ListQuery from the request's query string.
// Sort fields that are not columns of T are dropped.
func (c *BaseController[T]) ListQuery(ctx echo.Context) services.ListQuery {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var entity T
	columns := columnsOf(reflect.TypeOf(entity))

	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if reserved[key] || len(values) == 0 {
			continue
		}
		if col, ok := columns[key]; ok {
			filters[col] = values[0]
		}
	}

	excludes := make(map[string]bool)
	for _, field := range splitParam(ctx, "exclude") {
		excludes[field] = true
	}

	var sortFields []string
	for _, field := range splitParam(ctx, "sort") {
		if col, ok := columns[field]; ok {
			sortFields = append(sortFields, col)
		}
	}

	return services.ListQuery{
		Page:     page,
		Limit:    limit,
		Filters:  filters,
		Excludes: excludes,
		Sort:     sortFields,
		Order:    ctx.QueryParam("order"),
		Includes: splitParam(ctx, "include"),
	}
}

// columnsOf maps both the json name and the Go name of every scalar field of
// t, including embedded ones, to its column.
func columnsOf(t reflect.Type) map[string]string {
	columns := make(map[string]string)
	if t == nil || t.Kind() != reflect.Struct {
		return columns
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			for k, v := range columnsOf(f.Type) {
				columns[k] = v
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Slice || (ft.Kind() == reflect.Struct && ft.PkgPath() != "time") {
			continue
		}
		col := toColumn(f.Name)
		columns[f.Name] = col
		if name != "" {
			columns[name] = col
		}
	}
	return columns
}

// toColumn converts a Go field name to its column the way gorm names it.
func toColumn(field string) string {
	return naming.ColumnName("", field)
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	q := c.ListQuery(ctx)
	entities, total, err := c.service.List(ctx.Request().Context(), q)
	if err != nil {
		return serviceError(err)
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  q.Page,
		"limit": q.Limit,
	})
}

// Update handles updating an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := ctx.Validate(&entity); err != nil {
		return validator.HTTPError(err)
	}

	if err := c.service.Update(ctx.Request().Context(), id, &entity, splitParam(ctx, "include")...); err != nil {
		return serviceError(err)
	}

	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return serviceError(err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RegisterRoutes registers read routes on read and write routes on write.
func (c *BaseController[T]) RegisterRoutes(read, write *echo.Group) {
	read.GET("", c.List)
	read.GET("/:id", c.Get)
	if write == nil {
		return
	}
	write.POST("", c.Create)
	write.PUT("/:id", c.Update)
	write.DELETE("/:id", c.Delete)
}
