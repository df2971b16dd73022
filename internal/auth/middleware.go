package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyEmail  = "auth_email"
)

// Middleware authenticates requests from the Authorization: Bearer header.
type Middleware struct {
	tokens *TokenService
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Required aborts with 401 unless the request carries a valid token.
// Expired and malformed tokens are rejected alike.
func (m *Middleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.claimsFromHeader(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// Optional sets the user context when a valid token is present and treats
// everything else, including expired or malformed tokens, as anonymous.
func (m *Middleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := m.claimsFromHeader(c); claims != nil {
			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyEmail, claims.Email)
		}
		c.Next()
	}
}

func (m *Middleware) claimsFromHeader(c *gin.Context) *Claims {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil
	}
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil
	}
	return claims
}

// UserID extracts the authenticated user's id from the Gin context.
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// OptionalUserID returns a pointer to the viewer's id, or nil when the
// request is anonymous. The composer takes viewers in this shape.
func OptionalUserID(c *gin.Context) *uint {
	id, ok := UserID(c)
	if !ok {
		return nil
	}
	return &id
}
