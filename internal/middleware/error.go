package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/service"
)

// ErrorHandler renders the last error attached to the context with
// c.Error and turns panics into 500 responses. Handlers report failures
// with c.Error and return without writing a body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Ctx(c.Request.Context()).Error().Interface("panic", r).Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errors": "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := Render(c.Errors.Last().Err)
		if status >= http.StatusInternalServerError {
			logging.Ctx(c.Request.Context()).Error().Err(c.Errors.Last().Err).Msg("request failed")
		}
		c.JSON(status, body)
	}
}

// Status maps an error kind to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Render builds the status and JSON body for err. Field errors are keyed by
// field name; everything else is reported under "errors".
func Render(err error) (int, gin.H) {
	var fe *service.FieldError
	if errors.As(err, &fe) {
		if fe.Field == "" {
			return Status(fe), gin.H{"errors": fe.Message}
		}
		return Status(fe), gin.H{fe.Field: []string{fe.Message}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body := gin.H{}
		for _, fe := range verrs {
			body[fe.Field()] = []string{validationMessage(fe)}
		}
		return http.StatusBadRequest, body
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return http.StatusBadRequest, gin.H{"errors": "malformed request body"}
	}

	switch status := Status(err); status {
	case http.StatusInternalServerError:
		return status, gin.H{"errors": "internal server error"}
	default:
		return status, gin.H{"errors": err.Error()}
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "len":
		return "ensure this field has exactly " + fe.Param() + " characters"
	case "email":
		return "enter a valid email address"
	case "hexcolor":
		return "enter a valid #RRGGBB color"
	}
	return "invalid value (" + strings.ToLower(fe.Tag()) + ")"
}
