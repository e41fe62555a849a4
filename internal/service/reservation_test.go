package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"booking_marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (e *testEnv) book(t *testing.T, listingID, guestID, checkIn, checkOut string, guests int) (*domain.Reservation, error) {
	t.Helper()
	return e.reservations.Book(context.Background(), BookingRequest{
		ListingID:  listingID,
		CheckIn:    date(t, checkIn),
		CheckOut:   date(t, checkOut),
		Guests:     guests,
		TotalPrice: 600,
	}, guestID)
}

func TestReservationService_Scenario(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	alice := env.signup(t, "alice@test.com", domain.RoleGuest)
	bob := env.signup(t, "bob@test.com", domain.RoleGuest)
	carol := env.signup(t, "carol@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{MaxGuests: 3})

	r, err := env.book(t, l.ID, alice.ID, "2023-12-15", "2023-12-20", 3)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, r.UserID)
	assert.Equal(t, 600.0, r.TotalPrice)
	require.NotNil(t, r.Listing)
	assert.Equal(t, l.ID, r.Listing.ID)

	_, err = env.book(t, l.ID, bob.ID, "2023-12-18", "2023-12-22", 1)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Dates overlap with another booking")

	_, err = env.book(t, l.ID, carol.ID, "2023-12-20", "2023-12-25", 4)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualError(t, err, "Number of guests exceeds maximum allowed")
}

func TestReservationService_Book_TouchingStaysConflict(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{})

	_, err := env.book(t, l.ID, guest.ID, "2023-12-15", "2023-12-20", 1)
	require.NoError(t, err)

	_, err = env.book(t, l.ID, guest.ID, "2023-12-20", "2023-12-25", 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.book(t, l.ID, guest.ID, "2023-12-10", "2023-12-15", 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.book(t, l.ID, guest.ID, "2023-12-01", "2023-12-30", 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.book(t, l.ID, guest.ID, "2023-12-21", "2023-12-25", 1)
	assert.NoError(t, err)
}

func TestReservationService_Book_OtherListingUnaffected(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	a := env.createListing(t, host.ID, ListingInput{})
	b := env.createListing(t, host.ID, ListingInput{})

	_, err := env.book(t, a.ID, guest.ID, "2023-12-15", "2023-12-20", 1)
	require.NoError(t, err)
	_, err = env.book(t, b.ID, guest.ID, "2023-12-15", "2023-12-20", 1)
	assert.NoError(t, err)
}

func TestReservationService_Book_Rejections(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{MaxGuests: 2})

	tests := []struct {
		name     string
		caller   string
		listing  string
		checkIn  string
		checkOut string
		guests   int
		want     error
	}{
		{"host cannot book", host.ID, l.ID, "2024-01-01", "2024-01-03", 1, domain.ErrForbidden},
		{"host on unknown listing", host.ID, "missing", "2024-01-01", "2024-01-03", 1, domain.ErrForbidden},
		{"unknown caller", "ghost", l.ID, "2024-01-01", "2024-01-03", 1, domain.ErrNotFound},
		{"unknown listing", guest.ID, "missing", "2024-01-01", "2024-01-03", 1, domain.ErrNotFound},
		{"same day", guest.ID, l.ID, "2024-01-01", "2024-01-01", 1, domain.ErrValidation},
		{"inverted", guest.ID, l.ID, "2024-01-05", "2024-01-01", 1, domain.ErrValidation},
		{"over capacity", guest.ID, l.ID, "2024-01-01", "2024-01-03", 3, domain.ErrValidation},
		{"no guests", guest.ID, l.ID, "2024-01-01", "2024-01-03", 0, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.book(t, tt.listing, tt.caller, tt.checkIn, tt.checkOut, tt.guests)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	mine, err := env.reservations.ListForUser(context.Background(), guest.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestReservationService_Book_ConcurrentOverlapsCommitOnce(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{})
	checkIn, checkOut := date(t, "2024-03-01"), date(t, "2024-03-05")

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.reservations.Book(context.Background(), BookingRequest{
				ListingID: l.ID, CheckIn: checkIn, CheckOut: checkOut, Guests: 1,
			}, guest.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestReservationService_Book_LocksListingBeforeOtherReads(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{})

	var tables []string
	err := env.db.Callback().Query().After("gorm:query").Register("test:record_tables", func(tx *gorm.DB) {
		tables = append(tables, tx.Statement.Table)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.db.Callback().Query().Remove("test:record_tables") })

	_, err = env.book(t, l.ID, guest.ID, "2024-03-01", "2024-03-05", 1)

	require.NoError(t, err)
	require.NotEmpty(t, tables)
	assert.Equal(t, []string{"listings", "users", "reservations"}, tables)
}

func TestBookingTxOptions(t *testing.T) {
	assert.Empty(t, bookingTxOptions("sqlite"))
	for _, dialect := range []string{"mysql", "postgres"} {
		opts := bookingTxOptions(dialect)
		require.Len(t, opts, 1, dialect)
		assert.Equal(t, sql.LevelReadCommitted, opts[0].Isolation, dialect)
	}
}

func TestReservationService_ListForUser(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	other := env.signup(t, "other@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{Title: "Loft"})

	_, err := env.book(t, l.ID, guest.ID, "2024-05-10", "2024-05-12", 1)
	require.NoError(t, err)
	_, err = env.book(t, l.ID, guest.ID, "2024-02-01", "2024-02-03", 1)
	require.NoError(t, err)
	_, err = env.book(t, l.ID, other.ID, "2024-07-01", "2024-07-03", 1)
	require.NoError(t, err)

	mine, err := env.reservations.ListForUser(context.Background(), guest.ID)

	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].CheckIn.Before(mine[1].CheckIn))
	for _, r := range mine {
		assert.Equal(t, guest.ID, r.UserID)
		require.NotNil(t, r.Listing)
		assert.Equal(t, "Loft", r.Listing.Title)
	}
}

func TestReservationService_Cancel(t *testing.T) {
	env := newTestEnv(t)
	host := env.signup(t, "host@test.com", domain.RoleHost)
	guest := env.signup(t, "guest@test.com", domain.RoleGuest)
	other := env.signup(t, "other@test.com", domain.RoleGuest)
	l := env.createListing(t, host.ID, ListingInput{})
	r, err := env.book(t, l.ID, guest.ID, "2024-05-10", "2024-05-12", 1)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = env.reservations.Cancel(ctx, r.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	conf, err := env.reservations.Cancel(ctx, r.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, conf.ID)
	assert.Equal(t, "Reservation cancelled successfully", conf.Message)

	_, err = env.reservations.Cancel(ctx, r.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The freed dates can be booked again
	_, err = env.book(t, l.ID, other.ID, "2024-05-10", "2024-05-12", 1)
	assert.NoError(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-12-15")
	require.NoError(t, err)
	assert.Equal(t, "2023-12-15T00:00:00Z", d.Format("2006-01-02T15:04:05Z07:00"))

	d, err = ParseDate("2023-12-15T14:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 12, d.Hour())

	_, err = ParseDate("15/12/2023")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNights(t *testing.T) {
	assert.Equal(t, 5, domain.Nights(date(t, "2023-12-15"), date(t, "2023-12-20")))
	assert.Equal(t, 0, domain.Nights(date(t, "2023-12-15"), date(t, "2023-12-15")))
	assert.Less(t, domain.Nights(date(t, "2023-12-20"), date(t, "2023-12-15")), 0)
}
