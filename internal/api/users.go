package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipedia/backend/internal/middleware"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

type UserHandler struct {
	users     service.IUserService
	relations service.IRelationService
	projector *service.Projector
	pageSize  int
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.UserCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, service.UserCreated(user))
}

func (h *UserHandler) List(c *gin.Context) {
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	users, total, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.projector.Users(c.Request.Context(), middleware.Viewer(c), users)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, out, total, page))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.respondUser(c, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	h.respondUser(c, user)
}

func (h *UserHandler) respondUser(c *gin.Context, user *models.User) {
	out, err := h.projector.Users(c.Request.Context(), middleware.Viewer(c), []models.User{*user})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out[0])
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the viewer follows.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}
	recipesLimit := queryInt(c, "recipes_limit", 0)

	authors, total, err := h.users.Subscriptions(c.Request.Context(), userID, page, recipesLimit)
	if err != nil {
		c.Error(err)
		return
	}
	out, err := h.projector.Subscriptions(c.Request.Context(), &userID, authors)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, out, total, page))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.relations.Subscribe(c.Request.Context(), userID, authorID); err != nil {
		c.Error(err)
		return
	}

	summary, err := h.users.AuthorSummary(c.Request.Context(), authorID, queryInt(c, "recipes_limit", 0))
	if err != nil {
		c.Error(err)
		return
	}
	out, err := h.projector.Subscriptions(c.Request.Context(), &userID, []service.AuthorSummary{*summary})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, out[0])
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	if err := h.relations.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
