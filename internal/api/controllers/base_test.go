package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/models"
	"chwadmin/internal/services"
)

type widget struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type memService struct {
	items   map[string]widget
	lastQry services.ListQuery
}

func (m *memService) Create(_ context.Context, w *widget, _ ...string) error {
	w.ID = "w" + string(rune('0'+len(m.items)))
	m.items[w.ID] = *w
	return nil
}

func (m *memService) Get(_ context.Context, id string, _ ...string) (*widget, error) {
	w, ok := m.items[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &w, nil
}

func (m *memService) List(_ context.Context, q services.ListQuery) ([]widget, int64, error) {
	m.lastQry = q
	var out []widget
	for _, w := range m.items {
		out = append(out, w)
	}
	return out, int64(len(out)), nil
}

func (m *memService) Update(_ context.Context, id string, w *widget, _ ...string) error {
	if _, ok := m.items[id]; !ok {
		return services.ErrNotFound
	}
	w.ID = id
	m.items[id] = *w
	return nil
}

func (m *memService) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return services.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type noopValidator struct{}

func (noopValidator) Validate(interface{}) error { return nil }

func setup() (*echo.Echo, *memService) {
	e := echo.New()
	e.Validator = noopValidator{}
	svc := &memService{items: map[string]widget{"a": {ID: "a", Name: "first"}}}
	ctrl := NewBaseController[widget](svc)
	g := e.Group("/widgets")
	ctrl.RegisterRoutes(g, g)
	return e, svc
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCRUD(t *testing.T) {
	e, _ := setup()

	rec := do(e, http.MethodGet, "/widgets/a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first"`)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/widgets/missing", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/widgets/missing", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/widgets/missing", "").Code)

	rec = do(e, http.MethodPost, "/widgets", `{"name":"second"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPut, "/widgets/a", `{"name":"renamed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "renamed")

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodDelete, "/widgets/a", "").Code)
}

func TestListQuery(t *testing.T) {
	e, svc := setup()

	rec := do(e, http.MethodGet, "/widgets?page=2&limit=500&name=first&sort=CreatedAt,Bogus&order=desc&include=Roles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 100, body["limit"])

	q := svc.lastQry
	assert.Equal(t, map[string]interface{}{"name": "first"}, q.Filters)
	assert.Equal(t, []string{"created_at"}, q.Sort)
	assert.Equal(t, "desc", q.Order)
	assert.Equal(t, []string{"Roles"}, q.Includes)
}

func TestToColumn(t *testing.T) {
	assert.Equal(t, "created_at", toColumn("CreatedAt"))
	assert.Equal(t, "title", toColumn("Title"))
	assert.Equal(t, "id", toColumn("ID"))
}

func TestColumnsOf(t *testing.T) {
	type embedded struct {
		ID string `json:"id"`
	}
	type row struct {
		embedded
		FacilityID *string  `json:"facilityId"`
		Tags       []string `json:"tags"`
		Secret     string   `json:"-"`
	}
	cols := columnsOf(reflect.TypeOf(row{}))
	assert.Equal(t, "id", cols["id"])
	assert.Equal(t, "facility_id", cols["facilityId"])
	assert.Equal(t, "facility_id", cols["FacilityID"])
	assert.NotContains(t, cols, "Secret")
	assert.NotContains(t, cols, "secret")
	assert.NotContains(t, cols, "tags")
	assert.NotContains(t, cols, "-")
}

func TestListQueryNeverFiltersOnHiddenFields(t *testing.T) {
	e := echo.New()
	ctrl := NewBaseController[models.User](nil)
	req := httptest.NewRequest(http.MethodGet, "/users?Password=$2a$10$abc&password=x&email=a@b.org&sort=Password,email", nil)
	ctx := e.NewContext(req, httptest.NewRecorder())

	q := ctrl.ListQuery(ctx)

	assert.Equal(t, map[string]interface{}{"email": "a@b.org"}, q.Filters)
	assert.Equal(t, []string{"email"}, q.Sort)
}
