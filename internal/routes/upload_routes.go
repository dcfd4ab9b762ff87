package routes

import (
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"chwadmin/internal/access"
	"chwadmin/internal/api/middleware"
	"chwadmin/internal/handlers"
	"chwadmin/internal/utils/logger"
)

func SetupUploadRoutes(protected *echo.Group, db *gorm.DB) {
	log := logger.New("upload_routes")

	// Uploaded images are referenced from published books, so they are public.
	uploadHandler := handlers.NewUploadHandler(db, types.ObjectCannedACLPublicRead)

	protected.POST("/files/upload", uploadHandler.UploadFile,
		middleware.RequirePermissions(access.WriteFiles))

	log.Success("Upload routes initialized successfully")
}
