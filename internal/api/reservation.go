package api

import (
	"net/http" // HTTP status codes

	"booking_marketplace/internal/service" // Booking engine

	"github.com/gin-gonic/gin" // Gin web framework
)

// BookRequest represents a reservation request
type BookRequest struct {
	ListingID  string   `json:"listingId" binding:"required"`
	CheckIn    string   `json:"checkIn" binding:"required"`  // YYYY-MM-DD or RFC 3339
	CheckOut   string   `json:"checkOut" binding:"required"` // YYYY-MM-DD or RFC 3339
	Guests     int      `json:"guests" binding:"required,min=1"`
	TotalPrice *float64 `json:"totalPrice" binding:"required,gte=0"` // Pointer so an explicit 0 passes required
}

// BookHandler reserves a listing for the authenticated guest
func BookHandler(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		var req BookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		checkIn, err := service.ParseDate(req.CheckIn)
		if err != nil {
			respondError(c, err)
			return
		}
		checkOut, err := service.ParseDate(req.CheckOut)
		if err != nil {
			respondError(c, err)
			return
		}
		reservation, err := reservations.Book(c.Request.Context(), service.BookingRequest{
			ListingID:  req.ListingID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Guests:     req.Guests,
			TotalPrice: *req.TotalPrice,
		}, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, reservation)
	}
}

// MyReservationsHandler returns the caller's reservations
func MyReservationsHandler(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		result, err := reservations.ListForUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// CancelReservationHandler cancels one of the caller's reservations
func CancelReservationHandler(reservations *service.ReservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		conf, err := reservations.Cancel(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}
