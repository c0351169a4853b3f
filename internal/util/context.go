package util

import (
	"github.com/curiohub/curiohub/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	ContextUserID  = "user_id"
	ContextUser    = "user"
	ContextIsAdmin = "is_admin"
)

// GetUserFromContext extracts the authenticated user from the Gin context.
// When no user is present it responds with 401 and returns false.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	user, ok := OptionalUser(c)
	if !ok {
		RespondUnauthorized(c)
		return nil, false
	}
	return user, true
}

// GetUserIDFromContext extracts the user ID from the Gin context.
// When no user is present it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	raw, exists := c.Get(ContextUserID)
	if !exists {
		RespondUnauthorized(c)
		return "", false
	}
	userID, ok := raw.(string)
	if !ok || userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// OptionalUser returns the signed-in user, if any, without responding.
func OptionalUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(ContextUser)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
