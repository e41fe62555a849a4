package api

import (
	"net/http" // HTTP status codes

	"booking_marketplace/internal/domain"     // Roles
	"booking_marketplace/internal/middleware" // Auth and logging middleware
	"booking_marketplace/internal/service"    // Components

	"github.com/gin-gonic/gin" // Gin web framework
)

// Services are the components the HTTP surface routes to
type Services struct {
	Identity     *service.IdentityService
	Listings     *service.ListingService
	Reservations *service.ReservationService
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuthMiddleware(svc.Identity)

	// User routes
	users := r.Group("/users")
	users.POST("/signup", SignupHandler(svc.Identity))
	users.POST("/login", LoginHandler(svc.Identity))
	users.GET("/me", auth, MeHandler(svc.Identity))

	// Listing routes, reads are public
	listings := r.Group("/listings")
	listings.POST("", auth, middleware.RequireRole(svc.Identity, domain.RoleHost, "Only hosts can create listings"), CreateListingHandler(svc.Listings))
	listings.GET("", ListListingsHandler(svc.Listings))
	listings.GET("/filter", FilterListingsHandler(svc.Listings))
	listings.GET("/:id", GetListingHandler(svc.Listings))
	listings.PUT("/:id", auth, UpdateListingHandler(svc.Listings))
	listings.DELETE("/:id", auth, DeleteListingHandler(svc.Listings))

	// Reservation routes (protected by JWT)
	reservations := r.Group("/reservations", auth)
	reservations.POST("", middleware.RequireRole(svc.Identity, domain.RoleGuest, "Only guests can make reservations"), BookHandler(svc.Reservations))
	reservations.GET("/me", MyReservationsHandler(svc.Reservations))
	reservations.DELETE("/:id", CancelReservationHandler(svc.Reservations))

	return r
}
