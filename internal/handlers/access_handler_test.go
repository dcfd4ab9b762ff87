package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/access"
	"chwadmin/internal/api/validator"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
)

const (
	nurseRole = "6f1c1c8e-3b0a-4c1e-9d5e-1a2b3c4d5e6f"
	ghostRole = "0a0a0a0a-0000-4000-8000-000000000000"
)

// memUsers creates users only when every role exists, like the transactional service.
type memUsers struct {
	roles map[string]models.Role
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{
		roles: map[string]models.Role{nurseRole: {Base: models.Base{ID: nurseRole}, Name: "nurse"}},
		users: map[string]*models.User{},
	}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User, roleIDs []string) (*models.User, error) {
	if _, taken := m.users[user.Email]; taken {
		return nil, services.ErrConflict
	}
	var roles []models.Role
	for _, id := range roleIDs {
		r, ok := m.roles[id]
		if !ok {
			return nil, services.ErrNotFound
		}
		roles = append(roles, r)
	}
	user.ID = "u" + user.Email
	user.Roles = roles
	m.users[user.Email] = user
	return user, nil
}

func (m *memUsers) AssignRoles(context.Context, string, []string) (*models.User, error) {
	return nil, services.ErrNotFound
}

func (m *memUsers) GrantPermissions(context.Context, string, []access.Permission) (*models.Role, error) {
	return nil, services.ErrNotFound
}

func accessServer(users *memUsers) *echo.Echo {
	e := echo.New()
	e.Validator = validator.NewValidator()
	h := NewAccessHandler(users)
	e.POST("/users", h.CreateUser)
	return e
}

func TestCreateUserWithUnknownRoleLeavesNoUser(t *testing.T) {
	users := newMemUsers()
	e := accessServer(users)

	body := `{"email":"Alice@Clinic.org","password":"longenough","firstName":"Alice","roleIds":["` + ghostRole + `"]}`
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodPost, "/users", body).Code)
	assert.Empty(t, users.users)

	body = `{"email":"Alice@Clinic.org","password":"longenough","firstName":"Alice","roleIds":["` + nurseRole + `"]}`
	rec := call(e, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := users.users["alice@clinic.org"]
	require.NotNil(t, created)
	assert.Len(t, created.Roles, 1)
	assert.NotEqual(t, "longenough", created.Password)

	assert.Equal(t, http.StatusConflict, call(e, http.MethodPost, "/users", body).Code)
}
