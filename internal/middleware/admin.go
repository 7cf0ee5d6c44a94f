package middleware

import (
	"net/http"              // HTTP status codes
	"yieldly/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware accepts only tokens issued by the admin login.
// Admin sessions are separate from user accounts; there is no role column.
func AdminOnlyMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			return
		}
		if claims.Type != utils.TokenAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Next()
	}
}
