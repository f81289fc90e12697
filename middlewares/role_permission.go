package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RolePermission must run after AuthMiddleWare.
func RolePermission(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "The user's role permission denied"})
	}
}
