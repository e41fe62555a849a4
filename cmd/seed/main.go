package main

import (
	"context"

	"booking_marketplace/internal/config"
	"booking_marketplace/internal/db"
	"booking_marketplace/internal/domain"
	"booking_marketplace/internal/service"
	"booking_marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a sample host and listing
func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	identity := service.NewIdentityService(gdb, cfg.JWTSecret, cfg.JWTTTL, bcrypt.DefaultCost)
	listings := service.NewListingService(gdb, utils.NewCache(nil, cfg.CacheTTL))

	host, err := identity.Signup(ctx, service.SignupInput{
		Email:    "host@test.com",
		Password: "password123",
		Name:     "Test Host",
		Role:     domain.RoleHost,
	})
	if err != nil {
		logrus.Fatalf("seed host: %v", err)
	}

	listing, err := listings.Create(ctx, service.ListingInput{
		Title:         "Cozy Apartment in NYC",
		Description:   "A nice apartment in Manhattan.",
		PricePerNight: 120,
		Location:      "New York",
		Photos:        []string{"photo1.jpg", "photo2.jpg"},
		Amenities:     []string{"wifi", "kitchen"},
		Category:      "apartment",
		MaxGuests:     3,
	}, host.User.ID)
	if err != nil {
		logrus.Fatalf("seed listing: %v", err)
	}

	logrus.WithFields(logrus.Fields{"host_id": host.User.ID, "listing_id": listing.ID}).Info("Seeding complete")
}
