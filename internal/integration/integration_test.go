// Package integration exercises the full HTTP stack against PostgreSQL
// and Redis containers.
package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipedia/backend/config"
	"github.com/pageza/recipedia/backend/internal/api"
	"github.com/pageza/recipedia/backend/internal/server"
	"github.com/pageza/recipedia/backend/internal/testhelpers"
	"github.com/pageza/recipedia/backend/internal/types"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func pngDataURI() string {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestRecipeFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewPostgresDB(t)
	redisClient := testhelpers.NewRedis(t)

	cfg := &config.Config{
		JWTSecret:         "integration-secret",
		JWTTTL:            time.Hour,
		MediaDir:          t.TempDir(),
		MediaURL:          "/media/",
		RecipeCreateLimit: 1,
		PageSize:          6,
	}
	deps, err := server.NewDependencies(context.Background(), cfg, db, redisClient)
	require.NoError(t, err)
	router := api.NewRouter(deps, nil)

	tag := testhelpers.CreateTag(t, db, "dinner")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	anon := &client{t: t, router: router}
	w := anon.do(http.MethodPost, "/api/users", map[string]string{
		"email":      "ann@example.com",
		"username":   "ann",
		"first_name": "Ann",
		"last_name":  "Lee",
		"password":   "plum-tractor-velvet-42",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = anon.do(http.MethodPost, "/api/auth/token/login", map[string]string{
		"email": "ann@example.com", "password": "plum-tractor-velvet-42",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	ann := &client{t: t, router: router, token: login.AuthToken}

	recipe := map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": 500}},
		"tags":         []uuid.UUID{tag.ID},
		"image":        pngDataURI(),
		"name":         "Bread",
		"text":         "Knead.\nBake.",
		"cooking_time": 90,
	}
	w = ann.do(http.MethodPost, "/api/recipes", recipe)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	var created types.RecipeRead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = ann.do(http.MethodPost, "/api/recipes", recipe)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = ann.do(http.MethodPost, "/api/recipes/"+created.ID.String()+"/shopping_cart", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ann.do(http.MethodGet, "/api/recipes/download_shopping_cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Shopping list for Ann Lee\n"))
	assert.Contains(t, w.Body.String(), "| flour      |    500 | g    |")

	w = ann.do(http.MethodGet, created.Image, nil)
	assert.Equal(t, http.StatusOK, w.Code, "local media is served")

	w = anon.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ann.do(http.MethodPost, "/api/auth/token/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = ann.do(http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token")
}
