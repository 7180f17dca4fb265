package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/api"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/testhelpers"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewSQLiteDB(t)
	images := service.NewLocalImageStore(t.TempDir(), "/media")
	relations := service.NewRelationService(db)
	auth := service.NewAuthService(db, "test-secret", time.Hour, nil)
	users := service.NewUserService(db, 6)

	router := api.NewRouter(api.Dependencies{
		Auth:        auth,
		Users:       users,
		Recipes:     service.NewRecipeService(db, images, 6),
		Relations:   relations,
		Shopping:    service.NewShoppingService(db),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Projector:   service.NewProjector(relations, images),
		PageSize:    6,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, nil)

	return &testServer{router: router, db: db, auth: auth}
}

// token issues an auth token for user.
func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.GenerateToken(user)
	require.NoError(t, err)
	return token
}

// PerformRequestWithToken sends a JSON request; an empty token is anonymous.
func (s *testServer) PerformRequestWithToken(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func pngDataURI() string {
	payload := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 24)...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}
