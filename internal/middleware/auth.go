package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/models"
	"github.com/pageza/recipedia/backend/internal/service"
	"github.com/pageza/recipedia/backend/internal/types"
)

const (
	userIDKey = "user_id"
	claimsKey = "token_claims"
)

// TokenValidator is an interface for validating auth tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// UserLookup loads the account behind a token.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// bearerToken extracts the token from "Token <t>" or "Bearer <t>".
// ok is false when no Authorization header is present.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, nil
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || token == "" || (scheme != "Token" && scheme != "Bearer") {
		return "", true, service.ErrInvalidToken
	}
	return token, true, nil
}

func authenticate(c *gin.Context, validator TokenValidator, required bool) bool {
	token, present, err := bearerToken(c)
	if err != nil {
		c.Error(err)
		c.Abort()
		return false
	}
	if !present {
		if required {
			c.Error(service.ErrUnauthenticated)
			c.Abort()
			return false
		}
		return true
	}

	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		c.Abort()
		return false
	}

	c.Set(userIDKey, claims.UserID)
	c.Set(claimsKey, claims)
	c.Request = c.Request.WithContext(logging.WithUserID(c.Request.Context(), claims.UserID.String()))
	return true
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, true) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the viewer when a token is sent and lets
// anonymous requests through. A token that is sent but invalid is still
// rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, false) {
			c.Next()
		}
	}
}

// RequireStaff must run after AuthMiddleware.
func RequireStaff(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.Error(service.ErrUnauthenticated)
			c.Abort()
			return
		}
		user, err := users.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		if !user.IsStaff {
			c.Error(service.ErrStaffOnly)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Viewer returns the authenticated user's id, or nil for anonymous requests.
func Viewer(c *gin.Context) *uuid.UUID {
	id, ok := UserID(c)
	if !ok {
		return nil
	}
	return &id
}

// Claims returns the validated token claims.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}
