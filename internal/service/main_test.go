package service

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"booking_marketplace/internal/db"
	"booking_marketplace/internal/domain"
	"booking_marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type testEnv struct {
	db           *gorm.DB
	identity     *IdentityService
	listings     *ListingService
	reservations *ReservationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &testEnv{
		db:           gdb,
		identity:     NewIdentityService(gdb, testJWTSecret, time.Hour, bcrypt.MinCost),
		listings:     NewListingService(gdb, utils.NewCache(nil, time.Minute)),
		reservations: NewReservationService(gdb),
	}
}

func (e *testEnv) signup(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	res, err := e.identity.Signup(context.Background(), SignupInput{
		Email:    email,
		Password: "password123",
		Name:     "Test " + string(role),
		Role:     role,
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) createListing(t *testing.T, ownerID string, in ListingInput) *domain.Listing {
	t.Helper()
	if in.Title == "" {
		in.Title = "Cozy Apartment"
	}
	if in.Description == "" {
		in.Description = "A nice place"
	}
	if in.Location == "" {
		in.Location = "New York"
	}
	if in.PricePerNight == 0 {
		in.PricePerNight = 100
	}
	if in.MaxGuests == 0 {
		in.MaxGuests = 3
	}
	l, err := e.listings.Create(context.Background(), in, ownerID)
	require.NoError(t, err)
	return l
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}
