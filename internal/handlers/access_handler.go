package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"chwadmin/internal/access"
	"chwadmin/internal/api/validator"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/utils"
	"chwadmin/internal/utils/logger"
)

// RoleAssigner changes which roles a user holds and which permissions a role grants.
type RoleAssigner interface {
	CreateUser(ctx context.Context, user *models.User, roleIDs []string) (*models.User, error)
	AssignRoles(ctx context.Context, userID string, roleIDs []string) (*models.User, error)
	GrantPermissions(ctx context.Context, roleID string, perms []access.Permission) (*models.Role, error)
}

type AccessHandler struct {
	roles RoleAssigner
	log   *logger.Logger
}

func NewAccessHandler(roles RoleAssigner) *AccessHandler {
	return &AccessHandler{roles: roles, log: logger.New("AccessHandler")}
}

type CreateUserRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	FirstName  string   `json:"firstName" validate:"required"`
	LastName   string   `json:"lastName"`
	Phone      string   `json:"phone" validate:"omitempty,e164"`
	FacilityID *string  `json:"facilityId" validate:"omitempty,uuid"`
	RoleIDs    []string `json:"roleIds" validate:"dive,uuid"`
}

type AssignRolesRequest struct {
	RoleIDs []string `json:"roleIds" validate:"dive,uuid"`
}

type GrantPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"dive,permission"`
}

// CreateUser creates a console user with a hashed password.
// @Summary Create user
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User details"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already exists"
// @Router /users [post]
func (h *AccessHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return h.log.Error("Failed to hash password", err)
	}

	user := models.User{
		Email:      utils.NormalizeEmail(req.Email),
		Password:   string(hashedPassword),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		FacilityID: req.FacilityID,
		Active:     true,
	}

	created, err := h.roles.CreateUser(c.Request().Context(), &user, req.RoleIDs)
	if errors.Is(err, services.ErrConflict) {
		return echo.NewHTTPError(http.StatusConflict, "Email already exists")
	}
	if err != nil {
		return roleError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// AssignRoles replaces the roles held by a user.
// @Summary Assign roles to a user
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body AssignRolesRequest true "Role ids"
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string "User or role not found"
// @Router /users/{id}/roles [put]
func (h *AccessHandler) AssignRoles(c echo.Context) error {
	var req AssignRolesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	user, err := h.roles.AssignRoles(c.Request().Context(), c.Param("id"), req.RoleIDs)
	if err != nil {
		return roleError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GrantPermissions replaces the permissions granted by a role.
// @Summary Set a role's permissions
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body GrantPermissionsRequest true "Permission strings"
// @Success 200 {object} models.Role
// @Failure 404 {object} map[string]string "Role or permission not found"
// @Router /roles/{id}/permissions [put]
func (h *AccessHandler) GrantPermissions(c echo.Context) error {
	var req GrantPermissionsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	perms := make([]access.Permission, len(req.Permissions))
	for i, p := range req.Permissions {
		perms[i] = access.Permission(p)
	}

	role, err := h.roles.GrantPermissions(c.Request().Context(), c.Param("id"), perms)
	if err != nil {
		return roleError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func roleError(err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
