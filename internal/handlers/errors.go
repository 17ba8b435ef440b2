package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"taskify/server/internal/dto"
	"taskify/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// report JSON names in field errors instead of Go struct names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]dto.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, dto.FieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeValidationFailed, "Validation failed", fields...))
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeUserExists, "User already exists",
			dto.FieldError{Field: "username", Message: "This username is already taken"}))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewError(dto.CodeInvalidCredentials, "Invalid credentials"))
	default:
		log.Printf("request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, dto.NewError(dto.CodeInternal, "Internal server error"))
	}
}

func respondTaskError(c *gin.Context, err error, action string) {
	if errors.Is(err, services.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, dto.NewError(dto.CodeTaskNotFound,
			"Task not found or you do not have permission to "+action+" it"))
		return
	}
	respondError(c, err)
}

// respondBindError shapes request decoding failures like validation failures.
func respondBindError(c *gin.Context, err error) {
	var (
		maxBytes   *http.MaxBytesError
		typeErr    *json.UnmarshalTypeError
		syntaxErr  *json.SyntaxError
		validation validator.ValidationErrors
	)

	switch {
	case errors.As(err, &maxBytes):
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewError(dto.CodePayloadTooLarge, "Request body is too large"))
	case errors.As(err, &validation):
		fields := make([]dto.FieldError, 0, len(validation))
		for _, fe := range validation {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeValidationFailed, "Validation failed", fields...))
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeValidationFailed, "Validation failed",
			dto.FieldError{Field: typeErr.Field, Message: label(typeErr.Field) + " must be " + kindName(typeErr.Type)}))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeValidationFailed, "Request body must be valid JSON"))
	default:
		c.JSON(http.StatusBadRequest, dto.NewError(dto.CodeValidationFailed, "Invalid request body"))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label(fe.Field()) + " is required"
	default:
		return label(fe.Field()) + " is invalid"
	}
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "a boolean value"
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "a number"
	default:
		return "a " + t.String()
	}
}

func label(field string) string {
	if field == "" {
		return "Field"
	}
	r := []rune(field)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
