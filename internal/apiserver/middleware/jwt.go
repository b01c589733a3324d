package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atcops/opstrack/internal/auth/jwt"
	"github.com/atcops/opstrack/internal/auth/storage"
	"github.com/atcops/opstrack/internal/common/errorx"
)

const claimsKey = "claims"

// JWTAuthMiddleware creates a middleware that validates bearer tokens and
// rejects tokens revoked by a logout.
func JWTAuthMiddleware(jwtService *jwt.Service, tokens storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorx.Abort(c, errorx.ErrUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errorx.Abort(c, errorx.ErrUnauthorized)
			return
		}

		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			errorx.Abort(c, errorx.ErrUnauthorized)
			return
		}

		revoked, err := tokens.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			errorx.Abort(c, errorx.ErrInternal)
			return
		}
		if revoked {
			errorx.Abort(c, errorx.ErrUnauthorized)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the validated claims set by JWTAuthMiddleware
func ClaimsFromContext(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// RawToken extracts the bearer token string without validating it
func RawToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
