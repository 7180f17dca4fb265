package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipedia/backend/internal/middleware"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

type AuthHandler struct {
	auth service.IAuthService
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req types.TokenLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.TokenResponse{AuthToken: token})
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.Error(service.ErrUnauthenticated)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
