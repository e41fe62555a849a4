package api

import (
	"errors"   // Error kind matching
	"net/http" // HTTP status codes

	"booking_marketplace/internal/domain"     // Error kinds
	"booking_marketplace/internal/middleware" // Caller identity

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes business-rule failures verbatim and hides everything else
func respondError(c *gin.Context, err error) {
	var domainErr *domain.Error
	status := statusFor(err)
	if status == http.StatusInternalServerError || !errors.As(err, &domainErr) {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"error":  err.Error(),
		}).Error("Unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": domainErr.Message})
}

// callerID returns the authenticated user id, answering 401 when absent
func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return id.UserID, true
}
