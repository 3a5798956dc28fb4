package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/authz"
)

// RequireAdmin must run after Protect.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authz.PrincipalFrom(c)
		if !ok || !p.IsAdmin {
			abortJSON(c, http.StatusUnauthorized, msgAdminOnly)
			return
		}
		c.Next()
	}
}
