package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing Model
type Listing struct {
	ID            string                      `gorm:"type:varchar(36);primaryKey" json:"id"`          // Primary key (UUID)
	Title         string                      `gorm:"type:varchar(255);not null" json:"title"`        // Headline
	Description   string                      `gorm:"type:text;not null" json:"description"`          // Free text
	PricePerNight float64                     `gorm:"not null" json:"pricePerNight"`                  // Nightly price
	Location      string                      `gorm:"type:varchar(255);not null" json:"location"`     // Location string
	Photos        datatypes.JSONSlice[string] `json:"photos"`                                         // Photo references
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`                                      // Amenity tags
	Category      string                      `gorm:"type:varchar(64);index" json:"category"`         // Category
	MaxGuests     int                         `gorm:"not null" json:"maxGuests"`                      // Capacity
	OwnerID       string                      `gorm:"type:varchar(36);not null;index" json:"ownerId"` // Foreign key to User
	Owner         *User                       `gorm:"constraint:OnDelete:CASCADE" json:"-"`           // Owning host
	AmenityIndex  []ListingAmenity            `gorm:"constraint:OnDelete:CASCADE" json:"-"`           // One row per amenity tag
	CreatedAt     time.Time                   `gorm:"index" json:"createdAt"`                         // Creation time
	UpdatedAt     time.Time                   `json:"updatedAt"`                                      // Last update time
}

// ListingAmenity indexes a single amenity tag of a listing so that
// containment filters can be answered by the database.
type ListingAmenity struct {
	ListingID string `gorm:"type:varchar(36);primaryKey"`
	Name      string `gorm:"type:varchar(64);primaryKey"`
}

// BeforeCreate assigns a UUID when the caller did not
func (l *Listing) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID owns the listing
func (l *Listing) OwnedBy(userID string) bool {
	return l.OwnerID == userID
}

// AmenityRows builds the index rows for the listing's amenities
func (l *Listing) AmenityRows() []ListingAmenity {
	rows := make([]ListingAmenity, 0, len(l.Amenities))
	for _, a := range l.Amenities {
		rows = append(rows, ListingAmenity{ListingID: l.ID, Name: a})
	}
	return rows
}
