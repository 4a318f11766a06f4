package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filevault-api/internal/infrastructure/jwt"
)

const (
	CtxIdentity = "identity"
	CtxUserRole = "userRole"

	RoleAdmin = "admin"
)

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxIdentity, strings.ToLower(claims.Email))
		c.Set(CtxUserRole, claims.Role)

		c.Next()
	}
}

// OptionalAuthMiddleware resolves an identity when a valid bearer token
// is presented and lets anonymous requests pass through untouched. A
// malformed or expired token counts as anonymous here; the decision
// engine downstream decides what anonymity is worth.
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr != authHeader {
				if claims, err := jwtService.ValidateToken(tokenStr); err == nil {
					c.Set(CtxIdentity, strings.ToLower(claims.Email))
					c.Set(CtxUserRole, claims.Role)
				}
			}
		}

		c.Next()
	}
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(CtxUserRole) == RoleAdmin
}
