package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/api/middleware"
	"chwadmin/internal/api/validator"
	"chwadmin/internal/config"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/utils"
	"chwadmin/internal/utils/logger"
)

// ProfileSource loads a user's roles.
type ProfileSource interface {
	User(ctx context.Context, userID string) (*models.User, error)
	Profile(ctx context.Context, userID string) (access.Profile, error)
}

type AuthHandler struct {
	db       *gorm.DB
	jwt      config.JWTConfig
	profiles ProfileSource
	log      *logger.Logger
}

func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, profiles ProfileSource) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwtCfg, profiles: profiles, log: logger.New("AuthHandler")}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (h *AuthHandler) issue(userID, email string) (string, string, error) {
	token, err := utils.GenerateToken(userID, email, utils.TokenAccess, h.jwt.Secret, h.jwt.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := utils.GenerateToken(userID, email, utils.TokenRefresh, h.jwt.Secret, h.jwt.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return token, refresh, nil
}

// Login handles user login by validating credentials and opening a session.
// @Summary Login user
// @Description Authenticate user and return an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	var user models.User
	email := utils.NormalizeEmail(req.Email)
	if err := h.db.Where("email = ? AND is_deleted = ? AND active = ?", email, false, true).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, refresh, err := h.issue(user.ID, user.Email)
	if err != nil {
		return h.log.Error("Failed to generate token", err)
	}

	session := &models.AuthSession{
		UserID:    user.ID,
		Token:     token,
		Refresh:   refresh,
		IPAddress: utils.GetIPAddress(c.Request()),
		UserAgent: c.Request().UserAgent(),
		ExpiresAt: time.Now().Add(h.jwt.RefreshTTL),
	}
	if err := h.db.Create(session).Error; err != nil {
		return h.log.Error("Failed to create auth session", err)
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Token:        token,
		RefreshToken: refresh,
		ExpiresIn:    int64(h.jwt.AccessTTL.Seconds()),
	})
}

// RefreshToken swaps a refresh token for a new access token on the same session.
// @Summary Refresh access token
// @Description Get a new access token using a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid input")
	}
	if err := c.Validate(req); err != nil {
		return validator.HTTPError(err)
	}

	claims, err := utils.ParseToken(req.RefreshToken, utils.TokenRefresh, h.jwt.Secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	var session models.AuthSession
	if err := h.db.Where("user_id = ? AND refresh = ? AND is_deleted = ? AND expires_at > ?",
		claims.UserID, req.RefreshToken, false, time.Now()).First(&session).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	token, err := utils.GenerateToken(claims.UserID, claims.Email, utils.TokenAccess, h.jwt.Secret, h.jwt.AccessTTL)
	if err != nil {
		return h.log.Error("Failed to generate access token", err)
	}

	if err := h.db.Model(&session).Update("token", token).Error; err != nil {
		return h.log.Error("Failed to save access token", err)
	}

	return c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresIn: int64(h.jwt.AccessTTL.Seconds())})
}

// Logout closes the caller's session.
// @Summary Logout
// @Tags auth
// @Security BearerAuth
// @Success 204 "No content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	err := h.db.Model(&models.AuthSession{}).
		Where("user_id = ? AND token = ?", middleware.GetUserID(c), token).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": time.Now()}).Error
	if err != nil {
		return h.log.Error("Failed to close session", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetMe returns the current user
// @Summary Get current user
// @Description Get details of the current authenticated user with roles
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Router /users/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	user, err := h.profiles.User(c.Request().Context(), middleware.GetUserID(c))
	if errors.Is(err, services.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return h.log.Error("Failed to load user", err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile returns the caller's roles and permissions in the document shape
// the console evaluates.
// @Summary Get current user's permission profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} access.ProfileDoc
// @Router /users/me/profile [get]
func (h *AuthHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.Profile(c.Request().Context(), middleware.GetUserID(c))
	if errors.Is(err, services.ErrNotFound) {
		// Unknown or deactivated users get an empty profile, which grants nothing.
		return c.JSON(http.StatusOK, access.Profile{}.Doc())
	}
	if err != nil {
		return h.log.Error("Failed to load profile", err)
	}
	return c.JSON(http.StatusOK, profile.Doc())
}
