package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddlewareRouter(t *testing.T, expiry time.Duration) (*gin.Engine, *TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := newTestTokenService(t, expiry)
	middleware := NewMiddleware(service)

	router := gin.New()
	router.GET("/protected", middleware.Required(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	router.GET("/open", middleware.Optional(), func(c *gin.Context) {
		if id := OptionalUserID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"viewer": *id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"viewer": nil})
	})
	return router, service
}

func TestMiddleware_Required(t *testing.T) {
	router, service := setupMiddlewareRouter(t, time.Hour)

	t.Run("valid token passes", func(t *testing.T) {
		token, err := service.Issue(7, "reader@example.com")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":7`)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expiredRouter, expiredService := setupMiddlewareRouter(t, -time.Minute)
		token, err := expiredService.Issue(7, "reader@example.com")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		expiredRouter.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMiddleware_Optional(t *testing.T) {
	router, service := setupMiddlewareRouter(t, time.Hour)

	t.Run("anonymous request passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/open", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"viewer":null`)
	})

	t.Run("bad token is treated as anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"viewer":null`)
	})

	t.Run("valid token identifies the viewer", func(t *testing.T) {
		token, err := service.Issue(9, "reader@example.com")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"viewer":9`)
	})
}
