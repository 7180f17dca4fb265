package api

import (
	"encoding/json"
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

// configureValidator makes binding errors report JSON field names.
func configureValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// bindJSON decodes and validates the request body into dst. Binding rule
// failures are passed on as validator errors; a body that cannot be decoded
// at all is a validation error on the field that broke, or on the request
// when the field is unknown.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.Error(err)
		return false
	}
	c.Error(decodeError(err))
	return false
}

func decodeError(err error) *service.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field, _, _ := strings.Cut(typeErr.Field, ".")
		return &service.FieldError{Kind: service.ErrValidation, Field: field, Message: "invalid value: unexpected " + typeErr.Value}
	}
	return &service.FieldError{Kind: service.ErrValidation, Message: "malformed request body: " + err.Error()}
}

// pathID parses the :id parameter. An id that is not a UUID cannot name
// an existing resource and is reported as not found.
func pathID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(notFound)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := c.Get("user_id")
	if !ok {
		c.Error(service.ErrUnauthenticated)
		return uuid.Nil, false
	}
	userID, ok := id.(uuid.UUID)
	if !ok {
		c.Error(service.ErrUnauthenticated)
	}
	return userID, ok
}

// queryInt reads a positive integer query parameter. Absent or malformed
// values fall back to def.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func queryFlag(c *gin.Context, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true":
		return true
	}
	return false
}

// pageRequest reads ?page and ?limit, defaulting the limit to pageSize.
func pageRequest(c *gin.Context, pageSize int) (service.PageRequest, bool) {
	page, err := service.NewPageRequest(queryInt(c, "page", 1), queryInt(c, "limit", pageSize), pageSize)
	if err != nil {
		c.Error(err)
		return page, false
	}
	return page, true
}

// newPage wraps results with absolute next/previous links.
func newPage[T any](c *gin.Context, results []T, total int64, page service.PageRequest) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if page.Limit < 1 {
		return out
	}

	if int64(page.Page)*int64(page.Limit) < total {
		next := pageURL(c, page.Page+1)
		out.Next = &next
	}
	if page.Page > 1 {
		prev := pageURL(c, page.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
