package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/testhelpers"
	"github.com/pageza/recipedia/backend/internal/types"
)

func TestTagEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := testhelpers.CreateStaff(t, s.db, "admin")
	user := testhelpers.CreateUser(t, s.db, "ann")
	body := map[string]string{"name": "Breakfast", "color": "#e26c2d", "slug": "breakfast"}

	w := s.PerformRequestWithToken(http.MethodPost, "/api/tags", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.PerformRequestWithToken(http.MethodPost, "/api/tags", body, s.token(t, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := s.token(t, admin)
	w = s.PerformRequestWithToken(http.MethodPost, "/api/tags", body, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tag := decode[types.TagRead](t, w)
	assert.Equal(t, "#E26C2D", tag.Color)

	w = s.PerformRequestWithToken(http.MethodPost, "/api/tags", body, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"slug":["tag with this slug already exists"]}`, w.Body.String())

	w = s.PerformRequestWithToken(http.MethodPost, "/api/tags",
		map[string]string{"name": "Bad", "color": "red", "slug": "bad"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"color"`)

	w = s.PerformRequestWithToken(http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.TagRead](t, w), 1)

	path := "/api/tags/" + tag.ID.String()
	w = s.PerformRequestWithToken(http.MethodPatch, path,
		map[string]string{"name": "Brunch", "slug": "brunch"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[types.TagRead](t, w)
	assert.Equal(t, "brunch", updated.Slug)
	assert.Equal(t, "#E26C2D", updated.Color)

	w = s.PerformRequestWithToken(http.MethodDelete, path, nil, adminToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.PerformRequestWithToken(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIngredientEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := testhelpers.CreateStaff(t, s.db, "admin")
	chef := testhelpers.CreateUser(t, s.db, "chef")
	tag := testhelpers.CreateTag(t, s.db, "baking")
	flour := testhelpers.CreateIngredient(t, s.db, "Flour", "g")
	testhelpers.CreateIngredient(t, s.db, "flax seeds", "g")
	testhelpers.CreateIngredient(t, s.db, "sugar", "g")
	testhelpers.CreateRecipe(t, s.db, chef, "Bread", []*models.Tag{tag}, testhelpers.Item{Ingredient: flour, Amount: 1})
	adminToken := s.token(t, admin)

	w := s.PerformRequestWithToken(http.MethodGet, "/api/ingredients?name=fl", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]types.IngredientRead](t, w)
	require.Len(t, found, 2)
	assert.Equal(t, "Flour", found[0].Name)
	assert.Equal(t, "g", found[0].MeasurementUnit)

	w = s.PerformRequestWithToken(http.MethodGet, "/api/ingredients", nil, "")
	assert.Len(t, decode[[]types.IngredientRead](t, w), 3)

	w = s.PerformRequestWithToken(http.MethodPost, "/api/ingredients",
		map[string]string{"name": "milk", "measurement_unit": "ml"}, s.token(t, chef))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.PerformRequestWithToken(http.MethodPost, "/api/ingredients",
		map[string]string{"name": "milk", "measurement_unit": "ml"}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	milk := decode[types.IngredientRead](t, w)
	assert.Equal(t, "ml", milk.MeasurementUnit)

	w = s.PerformRequestWithToken(http.MethodPatch, "/api/ingredients/"+milk.ID.String(),
		map[string]string{"name": "milk", "measurement_unit": "l"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "l", decode[types.IngredientRead](t, w).MeasurementUnit)

	w = s.PerformRequestWithToken(http.MethodDelete, "/api/ingredients/"+flour.ID.String(), nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":["ingredient is used by recipes"]}`, w.Body.String())

	w = s.PerformRequestWithToken(http.MethodDelete, "/api/ingredients/"+milk.ID.String(), nil, adminToken)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.PerformRequestWithToken(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	s.PerformRequestWithToken(http.MethodGet, "/api/tags", nil, "")
	w = s.PerformRequestWithToken(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "recipedia_http_requests_total")
}
