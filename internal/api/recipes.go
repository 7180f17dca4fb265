package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/middleware"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

type RecipeHandler struct {
	recipes   service.IRecipeService
	relations service.IRelationService
	shopping  service.IShoppingService
	projector *service.Projector
	pageSize  int
}

// List supports ?author=<id>, repeated ?tags=<slug>, ?is_favorited=1 and
// ?is_in_shopping_cart=1.
func (h *RecipeHandler) List(c *gin.Context) {
	filter := service.RecipeFilter{
		TagSlugs:         c.QueryArray("tags"),
		IsFavorited:      queryFlag(c, "is_favorited"),
		IsInShoppingCart: queryFlag(c, "is_in_shopping_cart"),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.Error(&service.FieldError{Kind: service.ErrValidation, Field: "author", Message: "author must be a user id"})
			return
		}
		filter.AuthorID = &id
	}

	viewer := middleware.Viewer(c)
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	recipes, total, err := h.recipes.List(c.Request.Context(), viewer, filter, page)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.projector.Recipes(c.Request.Context(), viewer, recipes)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, out, total, page))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.RecipeWrite
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	var req types.RecipeWrite
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	h.respond(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) respond(c *gin.Context, status int, recipe *models.Recipe) {
	out, err := h.projector.Recipe(c.Request.Context(), middleware.Viewer(c), recipe)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(status, out)
}

// toggle runs a relation change for the current user and the recipe in the
// path. add returns the recipe for the minified response.
func (h *RecipeHandler) toggle(c *gin.Context, add func(userID, recipeID uuid.UUID) (*models.Recipe, error), remove func(userID, recipeID uuid.UUID) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}

	if add != nil {
		recipe, err := add(userID, recipeID)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, h.projector.Minified(recipe))
		return
	}
	if err := remove(userID, recipeID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, func(userID, recipeID uuid.UUID) (*models.Recipe, error) {
		return h.relations.AddFavorite(c.Request.Context(), userID, recipeID)
	}, nil)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.toggle(c, nil, func(userID, recipeID uuid.UUID) error {
		return h.relations.RemoveFavorite(c.Request.Context(), userID, recipeID)
	})
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggle(c, func(userID, recipeID uuid.UUID) (*models.Recipe, error) {
		return h.relations.AddToCart(c.Request.Context(), userID, recipeID)
	}, nil)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.toggle(c, nil, func(userID, recipeID uuid.UUID) error {
		return h.relations.RemoveFromCart(c.Request.Context(), userID, recipeID)
	})
}

// DownloadShoppingCart sends the aggregated cart as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.shopping.Build(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+list.Filename())
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.Text()))
}
