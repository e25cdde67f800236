// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"portal-auth-service/internal/pkg/response"
	"portal-auth-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	sessions *auth.SessionManager
}

func NewAuthMiddleware(sessions *auth.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
	}
}

// Auth validates the access token on every request. The token comes from
// the Authorization bearer header, with x-access-token accepted as a
// legacy fallback. Validation covers signature, expiry, blacklist
// membership and account state.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, err := m.sessions.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, err)
			return
		}

		c.Set("identity_id", claims.IdentityID)
		c.Set("jti", claims.ID)
		c.Set("phone_number", claims.PhoneNumber)
		c.Set("access_token", token)

		c.Next()
	}
}

// OptionalAuth attaches identity context when a valid token is presented
// but never rejects the request. Routes behind it must check
// IsAuthenticated themselves.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if claims, err := m.sessions.ValidateAccessToken(c.Request.Context(), token); err == nil {
				c.Set("identity_id", claims.IdentityID)
				c.Set("jti", claims.ID)
				c.Set("phone_number", claims.PhoneNumber)
				c.Set("access_token", token)
			}
		}
		c.Next()
	}
}

// ExtractToken pulls the raw access token from the request headers without
// validating it. Logout uses it so stale tokens can still be revoked.
func ExtractToken(c *gin.Context) string {
	return extractToken(c)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Legacy clients send the raw token in x-access-token.
	return strings.TrimSpace(c.GetHeader("x-access-token"))
}
