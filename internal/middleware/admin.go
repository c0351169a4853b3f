package middleware

import (
	"github.com/curiohub/curiohub/internal/util"
	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after RequireAuth. The admin flag comes from the
// user row loaded while validating the token, so a demoted admin loses
// access on their next request.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := util.GetUserFromContext(c)
		if !ok {
			return
		}
		if !user.IsAdmin {
			util.RespondForbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}
