package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"chwadmin/internal/api/middleware"
	"chwadmin/internal/models"
	"chwadmin/internal/utils/logger"
)

type UploadHandler struct {
	db  *gorm.DB
	log *logger.Logger
	acl types.ObjectCannedACL
}

func NewUploadHandler(db *gorm.DB, acl types.ObjectCannedACL) *UploadHandler {
	if acl == "" {
		acl = types.ObjectCannedACLPublicRead
	}
	return &UploadHandler{
		db:  db,
		log: logger.New("upload_handler"),
		acl: acl,
	}
}

// UploadResponse carries the stored file and a URL usable as an image src.
type UploadResponse struct {
	Message string       `json:"message"`
	File    *models.File `json:"file"`
	URL     string       `json:"url"`
}

// UploadFile handles file uploads to S3
// @Summary Upload a file
// @Description Upload a file, e.g. an image referenced by a book
// @Tags files
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} UploadResponse
// @Failure 400 {object} map[string]string "Validation error or file not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /files/upload [post]
func (h *UploadHandler) UploadFile(c echo.Context) error {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return echo.NewHTTPError(http.StatusBadRequest, "Content-Type must be multipart/form-data")
	}

	storage := GetStorageHandler()
	if storage == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Storage handler not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.log.Warn("No file in upload request: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No file provided")
	}

	src, err := file.Open()
	if err != nil {
		return h.log.Error("Failed to open file", err)
	}
	defer src.Close()

	body, err := io.ReadAll(src)
	if err != nil {
		return h.log.Error("Failed to read file", err)
	}
	if len(body) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "File is empty")
	}

	fileType := file.Header.Get(echo.HeaderContentType)
	if fileType == "" {
		fileType = http.DetectContentType(body)
	}

	ctx := c.Request().Context()
	key, url, err := storage.UploadFile(ctx, body, file.Filename, h.acl, fileType)
	if err != nil {
		return h.log.Error("Failed to upload file", err)
	}

	record := &models.File{
		UserID: middleware.GetUserID(c),
		Path:   key,
		Name:   file.Filename,
		Size:   int64(len(body)),
		Type:   fileType,
	}
	if err := h.db.WithContext(ctx).Create(record).Error; err != nil {
		return h.log.Error("Failed to insert file into database", err)
	}

	h.log.Success("File uploaded successfully: %s", url)

	return c.JSON(http.StatusCreated, UploadResponse{
		Message: "File uploaded successfully",
		File:    record,
		URL:     url,
	})
}
