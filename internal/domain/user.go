package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User Model
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`               // Primary key (UUID)
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // Unique email
	Password  string    `gorm:"not null" json:"-"`                                   // Bcrypt hash, never serialized
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`              // Display name
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`               // HOST or GUEST
	CreatedAt time.Time `json:"createdAt"`                                           // Creation time
	UpdatedAt time.Time `json:"updatedAt"`                                           // Last update time
}

// BeforeCreate assigns a UUID when the caller did not
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
