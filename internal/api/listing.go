package api

import (
	"net/http" // HTTP status codes

	"booking_marketplace/internal/service" // Listing directory

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateListingRequest represents a new listing
type CreateListingRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	PricePerNight float64  `json:"pricePerNight" binding:"required,gt=0"`
	Location      string   `json:"location" binding:"required"`
	Photos        []string `json:"photos"`
	Amenities     []string `json:"amenities"`
	Category      string   `json:"category"`
	MaxGuests     int      `json:"maxGuests" binding:"required,min=1"`
}

// UpdateListingRequest is a partial listing; absent fields stay unchanged
type UpdateListingRequest struct {
	Title         *string   `json:"title" binding:"omitempty,min=1"`
	Description   *string   `json:"description" binding:"omitempty,min=1"`
	PricePerNight *float64  `json:"pricePerNight" binding:"omitempty,gt=0"`
	Location      *string   `json:"location" binding:"omitempty,min=1"`
	Photos        *[]string `json:"photos"`
	Amenities     *[]string `json:"amenities"`
	Category      *string   `json:"category"`
	MaxGuests     *int      `json:"maxGuests" binding:"omitempty,min=1"`
}

// listingQueryParams are the query parameters of list and filter
type listingQueryParams struct {
	MinPrice  *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice  *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Location  string   `form:"location"`
	Category  string   `form:"category"`
	Amenities string   `form:"amenities"` // Comma-joined
	Guests    int      `form:"guests" binding:"omitempty,min=1"`
	SortBy    string   `form:"sortBy"`
	Order     string   `form:"order"`
	SortOrder string   `form:"sortOrder"` // Alias of order
	Skip      int      `form:"skip" binding:"omitempty,min=0"`
	Take      int      `form:"take" binding:"omitempty,min=1"`
}

func (p listingQueryParams) query() service.ListingQuery {
	order := p.Order
	if order == "" {
		order = p.SortOrder
	}
	return service.ListingQuery{
		MinPrice:  p.MinPrice,
		MaxPrice:  p.MaxPrice,
		Location:  p.Location,
		Category:  p.Category,
		Amenities: service.ParseAmenities(p.Amenities),
		Guests:    p.Guests,
		SortBy:    p.SortBy,
		Order:     order,
		Skip:      p.Skip,
		Take:      p.Take,
	}
}

// CreateListingHandler publishes a listing owned by the authenticated host
func CreateListingHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		var req CreateListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		listing, err := listings.Create(c.Request.Context(), service.ListingInput{
			Title:         req.Title,
			Description:   req.Description,
			PricePerNight: req.PricePerNight,
			Location:      req.Location,
			Photos:        req.Photos,
			Amenities:     req.Amenities,
			Category:      req.Category,
			MaxGuests:     req.MaxGuests,
		}, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, listing)
	}
}

// ListListingsHandler returns listings filtered by price range and location
func ListListingsHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params listingQueryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}
		q := params.query()
		// Only the list criteria apply here
		result, err := listings.List(c.Request.Context(), service.ListingQuery{
			MinPrice: q.MinPrice,
			MaxPrice: q.MaxPrice,
			Location: q.Location,
			Skip:     q.Skip,
			Take:     q.Take,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// FilterListingsHandler returns listings matching every supplied criterion
func FilterListingsHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params listingQueryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
			return
		}
		result, err := listings.Filter(c.Request.Context(), params.query())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GetListingHandler returns a single listing
func GetListingHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := listings.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// UpdateListingHandler applies a partial update to the caller's listing
func UpdateListingHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		var req UpdateListingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		listing, err := listings.Update(c.Request.Context(), c.Param("id"), userID, service.ListingPatch{
			Title:         req.Title,
			Description:   req.Description,
			PricePerNight: req.PricePerNight,
			Location:      req.Location,
			Photos:        req.Photos,
			Amenities:     req.Amenities,
			Category:      req.Category,
			MaxGuests:     req.MaxGuests,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// DeleteListingHandler removes the caller's listing
func DeleteListingHandler(listings *service.ListingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c)
		if !ok {
			return
		}
		conf, err := listings.Delete(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, conf)
	}
}
