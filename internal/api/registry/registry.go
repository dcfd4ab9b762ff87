package registry

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/api/controllers"
	"chwadmin/internal/api/middleware"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
)

// Groups returns the read group for path and, when write is non-empty, a
// nested write group. Each is gated by its permission.
func Groups(g *echo.Group, path string, read, write access.Permission) (*echo.Group, *echo.Group) {
	readGroup := g.Group(path, middleware.RequirePermissions(read))
	if write == "" {
		return readGroup, nil
	}
	return readGroup, readGroup.Group("", middleware.RequirePermissions(write))
}

func register[T any](g *echo.Group, db *gorm.DB, model T, path string, read, write access.Permission) *controllers.BaseController[T] {
	ctrl := controllers.NewBaseController(services.NewBaseService(db, model))
	readGroup, writeGroup := Groups(g, path, read, write)
	ctrl.RegisterRoutes(readGroup, writeGroup)
	return ctrl
}

// 📝 RegisterCRUDRoutes registers CRUD routes for all admin resources - godoc
// @Summary Register CRUD routes for all admin resources
// @Description Reads need read_admin/<resource>, writes need write_admin/<resource>
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	// Users are created through the user handler so passwords get hashed.
	// @Summary List users
	// @Description Get a page of users
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.User
	// @Failure 403 {object} map[string]string "Forbidden"
	// @Router /api/v1/users [get]
	users := controllers.NewBaseController(services.NewBaseService(db, models.User{}))
	userRead, userWrite := Groups(g, "/users", access.ReadUsers, access.WriteUsers)
	userRead.GET("", users.List)
	userRead.GET("/:id", users.Get)
	userWrite.PUT("/:id", users.Update)
	userWrite.DELETE("/:id", users.Delete)

	// @Summary List roles
	// @Description Get a page of roles; include=Permissions preloads grants
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.Role
	// @Failure 403 {object} map[string]string "Forbidden"
	// @Router /api/v1/roles [get]
	register(g, db, models.Role{}, "/roles", access.ReadRoles, access.WriteRoles)

	// The catalog is seeded at startup and read only over the API.
	// @Summary List permissions
	// @Description Get the permission catalog
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.Permission
	// @Router /api/v1/permissions [get]
	permissions := controllers.NewBaseController(services.NewBaseService(db, models.Permission{}))
	permissionGroup := g.Group("/permissions", middleware.RequireAnyOf(access.ReadPermissions, access.ReadRoles))
	permissionGroup.GET("", permissions.List)
	permissionGroup.GET("/:id", permissions.Get)

	// @Summary List facilities
	// @Description Get a page of health facilities
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.Facility
	// @Router /api/v1/facilities [get]
	register(g, db, models.Facility{}, "/facilities", access.ReadFacilities, access.WriteFacilities)

	// @Summary List quizzes
	// @Description Get a page of quizzes; include=Questions preloads questions
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.Quiz
	// @Router /api/v1/quizzes [get]
	register(g, db, models.Quiz{}, "/quizzes", access.ReadQuizzes, access.WriteQuizzes)

	// @Summary List books
	// @Description Get a page of books; exclude=content skips the tree
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.Book
	// @Router /api/v1/books [get]
	// Books are created and updated by the book handler, which validates the
	// content tree.
	books := controllers.NewBaseController(services.NewBaseService(db, models.Book{}))
	bookRead, bookWrite := Groups(g, "/books", access.ReadBooks, access.WriteBooks)
	bookRead.GET("", books.List)
	bookRead.GET("/:id", books.Get)
	bookWrite.DELETE("/:id", books.Delete)

	// Files are created by the upload handler.
	// @Summary List files
	// @Description Get a page of uploaded files with signed URLs
	// @Security BearerAuth
	// @Produce json
	// @Success 200 {array} models.File
	// @Router /api/v1/files [get]
	files := controllers.NewBaseController(services.NewBaseService(db, models.File{}))
	fileRead, fileWrite := Groups(g, "/files", access.ReadFiles, access.WriteFiles)
	fileRead.GET("", files.List)
	fileRead.GET("/:id", files.Get)
	fileWrite.DELETE("/:id", files.Delete)
}
