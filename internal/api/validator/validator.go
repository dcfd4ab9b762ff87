package validator

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chwadmin/internal/access"
	"chwadmin/internal/content"
	"chwadmin/internal/models"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Report json names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, fn := range map[string]playgroundvalidator.Func{
		"publish_status": validatePublishStatus,
		"permission":     validatePermission,
		"content_kind":   validateContentKind,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validation: %v", tag, err))
		}
	}

	return &CustomValidator{validator: v}
}

func validatePublishStatus(fl playgroundvalidator.FieldLevel) bool {
	return models.IsValidPublishStatus(models.PublishStatus(fl.Field().String()))
}

func validatePermission(fl playgroundvalidator.FieldLevel) bool {
	return access.Known(access.Permission(fl.Field().String()))
}

func validateContentKind(fl playgroundvalidator.FieldLevel) bool {
	return content.Kind(fl.Field().String()).Known()
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Format turns validation errors into a field -> message map.
func (ve ValidationErrors) Format() map[string]string {
	errMap := make(map[string]string)
	for _, err := range ve {
		field := err.Field()
		param := err.Param()

		switch err.Tag() {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "e164":
			errMap[field] = fmt.Sprintf("%s must be an E.164 phone number", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "publish_status":
			errMap[field] = fmt.Sprintf("%s must be one of: DRAFT, QUEUED, PUBLISHED, FAILED", field)
		case "permission":
			errMap[field] = fmt.Sprintf("%s is not a known permission", field)
		case "content_kind":
			errMap[field] = fmt.Sprintf("%s is not a supported content type", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, err.Tag())
		}
	}
	return errMap
}

// HTTPError converts a Validate failure into a 400 carrying the per-field
// messages. Other errors pass through.
func HTTPError(err error) error {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Format())
	}
	return err
}
