package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

// TagHandler serves tags. Lists are not paginated.
type TagHandler struct {
	tags service.ITagService
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]types.TagRead, len(tags))
	for i, t := range tags {
		out[i] = service.TagRead(t)
	}
	c.JSON(http.StatusOK, out)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrTagNotFound)
	if !ok {
		return
	}
	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.TagRead(*tag))
}

func (h *TagHandler) Create(c *gin.Context) {
	var req types.TagWrite
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, service.TagRead(*tag))
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrTagNotFound)
	if !ok {
		return
	}
	var req types.TagWrite
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.TagRead(*tag))
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrTagNotFound)
	if !ok {
		return
	}
	if err := h.tags.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// IngredientHandler serves ingredients; ?name filters by name prefix.
type IngredientHandler struct {
	ingredients service.IIngredientService
}

func (h *IngredientHandler) List(c *gin.Context) {
	ingredients, err := h.ingredients.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}
	out := make([]types.IngredientRead, len(ingredients))
	for i, ing := range ingredients {
		out[i] = service.IngredientRead(ing)
	}
	c.JSON(http.StatusOK, out)
}

func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrIngredientNotFound)
	if !ok {
		return
	}
	ingredient, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.IngredientRead(*ingredient))
}

func (h *IngredientHandler) Create(c *gin.Context) {
	var req types.IngredientWrite
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.ingredients.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, service.IngredientRead(*ingredient))
}

func (h *IngredientHandler) Update(c *gin.Context) {
	id, ok := pathID(c, service.ErrIngredientNotFound)
	if !ok {
		return
	}
	var req types.IngredientWrite
	if !bindJSON(c, &req) {
		return
	}
	ingredient, err := h.ingredients.Update(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, service.IngredientRead(*ingredient))
}

func (h *IngredientHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, service.ErrIngredientNotFound)
	if !ok {
		return
	}
	if err := h.ingredients.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
