package routes

import (
	"github.com/labstack/echo/v4"

	"chwadmin/internal/access"
	"chwadmin/internal/api/middleware"
	"chwadmin/internal/handlers"
	"chwadmin/internal/tasks"
)

// SetupBookRoutes registers the content tree endpoints of books.
func SetupBookRoutes(protected *echo.Group, editor handlers.BookEditor, queue tasks.Enqueuer) {
	bookHandler := handlers.NewBookHandler(editor, queue)

	// Book create and update live here rather than in the generic CRUD
	// routes so the content tree is validated on every write.
	books := protected.Group("/books", middleware.RequirePermissions(access.ReadBooks, access.WriteBooks))
	books.POST("", bookHandler.CreateBook)
	books.PUT("/:id", bookHandler.UpdateBook)

	read := protected.Group("/books/:id", middleware.RequirePermissions(access.ReadBooks))
	read.GET("/content", bookHandler.GetContent)
	read.GET("/render", bookHandler.Render)

	write := read.Group("", middleware.RequirePermissions(access.WriteBooks))
	write.PUT("/content", bookHandler.PutContent)
	write.POST("/items", bookHandler.InsertItem)
	write.POST("/items/move", bookHandler.MoveItem)
	write.PUT("/items/:index", bookHandler.UpdateItem)
	write.DELETE("/items", bookHandler.DeleteItem)

	read.POST("/publish", bookHandler.Publish, middleware.RequirePermissions(access.PublishBooks))
}
