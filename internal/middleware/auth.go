package middleware

import (
	"context"
	"strings"

	"github.com/curiohub/curiohub/internal/auth"
	"github.com/curiohub/curiohub/internal/models"
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

// TokenValidator resolves a bearer token to its user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

var _ TokenValidator = (auth.AuthServiceInterface)(nil)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the context under user_id, user and is_admin.
func RequireAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "no token provided")
			return
		}
		user, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			util.RespondUnauthorized(c, "invalid token")
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth stores the caller when a valid token is present and lets
// anonymous requests through. A bad token is treated as anonymous.
func OptionalAuth(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := v.ValidateToken(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(util.ContextUserID, user.ID)
	c.Set(util.ContextUser, user)
	c.Set(util.ContextIsAdmin, user.IsAdmin)
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
