package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation Model. Existence means confirmed; deletion means cancelled.
type Reservation struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`                // Primary key (UUID)
	UserID     string    `gorm:"type:varchar(36);not null;index" json:"userId"`        // Foreign key to the booking guest
	ListingID  string    `gorm:"type:varchar(36);not null;index" json:"listingId"`     // Foreign key to Listing
	CheckIn    time.Time `gorm:"not null;index" json:"checkIn"`                        // First night
	CheckOut   time.Time `gorm:"not null" json:"checkOut"`                             // Departure day
	Guests     int       `gorm:"not null" json:"guests"`                               // Party size
	TotalPrice float64   `gorm:"not null" json:"totalPrice"`                           // Price as supplied by the client
	User       *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`                 // Booker
	Listing    *Listing  `gorm:"constraint:OnDelete:CASCADE" json:"listing,omitempty"` // Booked listing
	CreatedAt  time.Time `json:"createdAt"`                                            // Booking time
}

// BeforeCreate assigns a UUID when the caller did not
func (r *Reservation) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Nights returns the number of whole nights between check-in and check-out
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn) / (24 * time.Hour))
}
