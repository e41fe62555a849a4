package middleware

import (
	"errors"   // Error kind matching
	"net/http" // HTTP status codes

	"booking_marketplace/internal/domain"  // Roles
	"booking_marketplace/internal/service" // Account lookup

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRole checks the caller's role from the database on each request.
// It must run after JWTAuthMiddleware.
func RequireRole(identity *service.IdentityService, role domain.Role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := identity.GetUser(c.Request.Context(), id.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			// Token outlived its account
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
