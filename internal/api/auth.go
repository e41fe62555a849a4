package api

import (
	"net/http" // HTTP status codes

	"booking_marketplace/internal/domain"  // Roles
	"booking_marketplace/internal/service" // Identity service

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for signup
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`    // Account email
	Password string `json:"password" binding:"required,min=6"` // Plaintext password, hashed before storage
	Name     string `json:"name" binding:"required"`           // Display name
	Role     string `json:"role"`                              // HOST or GUEST, defaults to GUEST
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Account email
	Password string `json:"password" binding:"required"` // Plaintext password
}

// SignupHandler registers a new account and returns a session token
func SignupHandler(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		res, err := identity.Signup(c.Request.Context(), service.SignupInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Role:     role,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// LoginHandler authenticates a user and returns a session token
func LoginHandler(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		res, err := identity.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// MeHandler returns the authenticated user's account
func MeHandler(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		user, err := identity.GetUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
