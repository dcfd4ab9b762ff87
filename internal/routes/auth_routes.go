package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/api/middleware"
	"chwadmin/internal/config"
	"chwadmin/internal/handlers"
	"chwadmin/internal/services"
)

// SetupAuthRoutes registers login and refresh on public and the caller's own
// endpoints on protected.
func SetupAuthRoutes(public, protected *echo.Group, db *gorm.DB, cfg *config.Config, profiles *services.ProfileService) {
	authHandler := handlers.NewAuthHandler(db, cfg.JWT, profiles)

	// Public routes (no auth required)
	auth := public.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Any authenticated user
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/users/me", authHandler.GetMe)
	protected.GET("/users/me/profile", authHandler.GetProfile)
}

// SetupAccessRoutes registers user creation and role/permission assignment.
func SetupAccessRoutes(protected *echo.Group, profiles *services.ProfileService) {
	accessHandler := handlers.NewAccessHandler(profiles)

	protected.POST("/users", accessHandler.CreateUser,
		middleware.RequirePermissions(access.ReadUsers, access.WriteUsers))
	protected.PUT("/users/:id/roles", accessHandler.AssignRoles,
		middleware.RequirePermissions(access.WriteUsers, access.ReadRoles))
	protected.PUT("/roles/:id/permissions", accessHandler.GrantPermissions,
		middleware.RequirePermissions(access.WriteRoles))
}
