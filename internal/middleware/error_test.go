package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipedia/backend/internal/service"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   gin.H
	}{
		{"field validation", service.ErrNoTags, http.StatusBadRequest, gin.H{"tags": []string{"tags field is missing"}}},
		{"conflict", service.ErrAlreadyFavorited, http.StatusBadRequest, gin.H{"errors": []string{"recipe is already in favorites"}}},
		{"not found", service.ErrRecipeNotFound, http.StatusNotFound, gin.H{"errors": "recipe not found"}},
		{"permission", service.ErrNotAuthor, http.StatusForbidden, gin.H{"errors": "only the author can modify this recipe"}},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized, gin.H{"errors": "authentication required"}},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError, gin.H{"errors": "internal server error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Render(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) { c.Error(service.ErrTagNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "fine") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"errors":"tag not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"errors":"internal server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}
