package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/models"
	"chwadmin/internal/utils"
	"chwadmin/internal/utils/logger"
)

var log = logger.New("auth_middleware")

// Context keys set by the auth middleware.
const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextEvaluator = "access"
)

// ErrSessionNotFound is returned when a token has no live session row.
var ErrSessionNotFound = errors.New("auth session not found")

// PermissionSource resolves a user's effective permission set.
type PermissionSource interface {
	Effective(ctx context.Context, userID string) (access.Set, error)
}

// SessionStore confirms that an access token still belongs to a live session.
type SessionStore interface {
	Active(ctx context.Context, userID, token string) error
}

// GormSessions looks sessions up in the auth_sessions table.
type GormSessions struct {
	DB *gorm.DB
}

func (s GormSessions) Active(ctx context.Context, userID, token string) error {
	var session models.AuthSession
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND token = ? AND is_deleted = ? AND expires_at > ?", userID, token, false, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	return err
}

type AuthMiddleware struct {
	jwtSecret   string
	sessions    SessionStore
	permissions PermissionSource
}

func NewAuthMiddleware(jwtSecret string, sessions SessionStore, permissions PermissionSource) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		sessions:    sessions,
		permissions: permissions,
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := m.Authenticate(c); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// Authenticate validates the request's bearer token and stores the caller's
// id and evaluator in c.
func (m *AuthMiddleware) Authenticate(c echo.Context) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
	}

	token, ok := BearerToken(authHeader)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
	}

	return m.validateJWT(c, token)
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string) error {
	claims, err := utils.ParseToken(tokenString, utils.TokenAccess, m.jwtSecret)
	if err != nil {
		log.Warn("Rejected access token: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	ctx := c.Request().Context()
	if m.sessions != nil {
		if err := m.sessions.Active(ctx, claims.UserID, tokenString); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired or revoked")
			}
			return log.Error("Failed to look up session", err)
		}
	}

	// A profile that cannot be resolved is treated as no roles at all.
	set := access.Set{}
	if m.permissions != nil {
		resolved, err := m.permissions.Effective(ctx, claims.UserID)
		if err != nil {
			log.Warn("Could not resolve permissions for %s: %v", claims.UserID, err)
		} else {
			set = resolved
		}
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextEvaluator, access.ForSet(set))
	return nil
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get(ContextUserID).(string); ok {
		return id
	}
	return ""
}

func GetEmail(c echo.Context) string {
	if email, ok := c.Get(ContextEmail).(string); ok {
		return email
	}
	return ""
}

// GetEvaluator returns the request's evaluator, or nil for anonymous requests.
func GetEvaluator(c echo.Context) *access.Evaluator {
	if ev, ok := c.Get(ContextEvaluator).(*access.Evaluator); ok {
		return ev
	}
	return nil
}

func HasPermission(c echo.Context, perms ...access.Permission) bool {
	return GetEvaluator(c).Can(perms...)
}
