package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/pkg/jwt"
	"boqtracker/internal/pkg/response"
)

const (
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// RequireRole ensures that the authenticated user has one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// GuardRoles returns RequireRole(roles...) for j, or a pass-through handler
// when auth is disabled.
func GuardRoles(j *jwt.Service, roles ...string) gin.HandlerFunc {
	if j == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return RequireRole(roles...)
}
