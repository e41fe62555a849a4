package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"booking_marketplace/internal/domain"  // Caller identity
	"booking_marketplace/internal/service" // Token verification

	"github.com/gin-gonic/gin" // Gin web framework
)

const identityKey = "identity"

// JWTAuthMiddleware validates bearer tokens and attaches the caller identity
func JWTAuthMiddleware(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Extract the token string
		id, err := identity.Authenticate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		// Store identity on both the gin and the request context
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// Identity returns the caller attached by JWTAuthMiddleware
func Identity(c *gin.Context) (domain.Identity, bool) {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id, true
		}
	}
	return domain.IdentityFromContext(c.Request.Context())
}
