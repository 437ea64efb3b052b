package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/pkg/jwt"
	"boqtracker/internal/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth requires a valid bearer token and stores its claims on the context.
func JWTAuth(j *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be a Bearer token")
			c.Abort()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := j.ValidateToken(tokenStr)
		if tokenStr == "" || err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// Guard returns JWTAuth for j, or a pass-through handler when auth is disabled.
func Guard(j *jwt.Service) gin.HandlerFunc {
	if j == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return JWTAuth(j)
}
