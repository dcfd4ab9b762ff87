package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "chwadmin/docs/swagger"
	"chwadmin/internal/api/registry"
	"chwadmin/internal/routes"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "CHW admin API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server and its database are up
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Failure 503 {object} map[string]string "Database unreachable"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 groups
	public := s.echo.Group("/api/v1")
	api := s.echo.Group("/api/v1", s.auth.Middleware())

	routes.SetupAuthRoutes(public, api, s.db, s.config, s.profiles)
	routes.SetupAccessRoutes(api, s.profiles)

	// Register CRUD routes for all models
	registry.RegisterCRUDRoutes(api, s.db)

	routes.SetupBookRoutes(api, s.books, s.queue)
	routes.SetupUploadRoutes(api, s.db)
}
