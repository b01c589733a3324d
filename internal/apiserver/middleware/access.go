package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/atcops/opstrack/internal/access"
	"github.com/atcops/opstrack/internal/common/errorx"
)

// RequirePermission creates a middleware that checks the caller's role
// against the permission table. Must run after JWTAuthMiddleware.
func RequirePermission(resource access.Resource, action access.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			errorx.Abort(c, errorx.ErrUnauthorized)
			return
		}
		if !access.Allowed(claims.Role, resource, action) {
			errorx.Abort(c, errorx.ErrForbidden)
			return
		}
		c.Next()
	}
}
