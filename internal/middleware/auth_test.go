package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"boqtracker/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTAuth_ValidToken(t *testing.T) {
	// Arrange
	secret := "test-secret-123"
	jwtService := jwt.New(secret, 1*time.Hour)
	validToken, _ := jwtService.GenerateToken(42, RoleEditor)

	// Create test router with middleware + test endpoint
	router := gin.New()
	router.Use(JWTAuth(jwtService)) // apply middleware

	router.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("role")
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"role":    role,
		})
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), RoleEditor)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	jwtService := jwt.New("wrong-secret", 1*time.Hour)

	router := gin.New()
	router.Use(JWTAuth(jwtService))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("This handler should not be reached")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-jwt-here")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuth_NoToken(t *testing.T) {
	jwtService := jwt.New("secret", 1*time.Hour)

	router := gin.New()
	router.Use(JWTAuth(jwtService))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	// No Authorization header
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_HEADER_MISSING")
}

func TestJWTAuth_WrongFormat(t *testing.T) {
	jwtService := jwt.New("secret", 1*time.Hour)

	router := gin.New()
	router.Use(JWTAuth(jwtService))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestGuard_NilServicePassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Guard(nil))
	router.POST("/boq-items", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/boq-items", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := jwt.New("secret", time.Hour)
	router := gin.New()
	router.Use(JWTAuth(jwtService), RequireRole(RoleEditor, RoleAdmin))
	router.DELETE("/boq-items/1", func(c *gin.Context) { c.Status(http.StatusOK) })

	editor, _ := jwtService.GenerateToken(1, RoleEditor)
	viewer, _ := jwtService.GenerateToken(2, "viewer")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/boq-items/1", nil)
	req.Header.Set("Authorization", "Bearer "+editor)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/boq-items/1", nil)
	req.Header.Set("Authorization", "Bearer "+viewer)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")
}

func TestGuardRoles(t *testing.T) {
	open := gin.New()
	open.Use(Guard(nil), GuardRoles(nil, RoleAdmin))
	open.POST("/calculation-sheets/populate-all", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	open.ServeHTTP(w, httptest.NewRequest("POST", "/calculation-sheets/populate-all", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	jwtService := jwt.New("secret", time.Hour)
	guarded := gin.New()
	guarded.Use(Guard(jwtService), GuardRoles(jwtService, RoleAdmin))
	guarded.POST("/calculation-sheets/populate-all", func(c *gin.Context) { c.Status(http.StatusOK) })

	editor, _ := jwtService.GenerateToken(1, RoleEditor)
	admin, _ := jwtService.GenerateToken(2, RoleAdmin)

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/calculation-sheets/populate-all", nil)
	req.Header.Set("Authorization", "Bearer "+editor)
	guarded.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/calculation-sheets/populate-all", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	guarded.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
