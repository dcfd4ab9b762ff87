package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	authmw "chwadmin/internal/api/middleware"
	"chwadmin/internal/api/validator"
	"chwadmin/internal/config"
	"chwadmin/internal/db"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/tasks"
	console "chwadmin/internal/utils/logger"
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	db       *gorm.DB
	auth     *authmw.AuthMiddleware
	profiles *services.ProfileService
	books    *services.BookService
	queue    tasks.Enqueuer
}

var log = console.New("API-Server")

// NewServer @title CHW Admin API
// @version 1.0
// @description Admin API for community health worker registration and learning content.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func NewServer(cfg *config.Config, gdb *gorm.DB, profiles *services.ProfileService, queue tasks.Enqueuer) (*Server, error) {
	e := echo.New()
	e.HideBanner = true

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("10M"))
	if cfg.Server.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.RateLimit))))
	}

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	s := &Server{
		echo:     e,
		config:   cfg,
		db:       gdb,
		auth:     authmw.NewAuthMiddleware(cfg.JWT.Secret, authmw.GormSessions{DB: gdb}, profiles),
		profiles: profiles,
		books:    services.NewBookService(gdb),
		queue:    queue,
	}

	// Seed permissions
	if err := models.SeedPermissions(gdb); err != nil {
		log.Warn("Warning: Failed to seed permissions: %v", err)
	} else {
		log.Success("Successfully seeded permissions")
	}

	if err := models.CreateSuperAdminFromEnv(gdb, cfg); err != nil {
		log.Warn("Warning: Failed to create super admin: %v", err)
	} else {
		log.Success("Successfully created super admin")
	}

	if err := s.mountAdminPanel(); err != nil {
		return nil, log.Error("Failed to create admin panel", err)
	}

	// Register routes
	s.registerRoutes()
	return s, nil
}

// panelPermission gates the admin panel on read_admin/panel. The request is
// authenticated here since the panel routes sit outside the API group.
func (s *Server) panelPermission(_ admin.PermissionRequest, ctx interface{}) (bool, error) {
	c, ok := ctx.(echo.Context)
	if !ok {
		return false, nil
	}
	if authmw.GetEvaluator(c) == nil {
		if err := s.auth.Authenticate(c); err != nil {
			return false, nil
		}
	}
	return authmw.HasPermission(c, access.ReadPanel), nil
}

func (s *Server) mountAdminPanel() error {
	gormIntegrator := admingorm.NewIntegrator(s.db)
	echoIntegrator := adminecho.NewIntegrator(s.echo.Group(""))

	adminPanel, err := admin.NewPanel(gormIntegrator, echoIntegrator, s.panelPermission, nil)
	if err != nil {
		return err
	}

	app, err := adminPanel.RegisterApp("CHW", "CHW Admin Panel", nil)
	if err != nil {
		return err
	}
	for _, model := range []interface{}{
		&models.User{}, &models.Role{}, &models.Permission{}, &models.Facility{},
		&models.Quiz{}, &models.Book{}, &models.File{},
	} {
		if _, err := app.RegisterModel(model, nil); err != nil {
			return fmt.Errorf("register %T: %w", model, err)
		}
	}
	return nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	status, code := "healthy", http.StatusOK
	if err := db.Ping(c.Request().Context()); err != nil {
		log.Warn("Health check: database unreachable: %v", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
		he      *echo.HTTPError
		ve      validator.ValidationErrors
	)

	switch {
	case errors.As(err, &he):
		code = he.Code
		message = he.Message
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		message = ve.Format()
	case errors.Is(err, services.ErrNotFound):
		code = http.StatusNotFound
		message = err.Error()
	default:
		message = http.StatusText(code)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}
