package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking_marketplace/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReservationService is the booking engine
type ReservationService struct {
	db *gorm.DB
}

// NewReservationService creates a new ReservationService
func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db}
}

// BookingRequest is a guest's request to reserve a listing
type BookingRequest struct {
	ListingID  string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	TotalPrice float64 // Trusted as supplied, not recomputed
}

// Book validates and commits a reservation.
//
// The overlap check and the insert run in one transaction holding a row
// lock on the listing, so concurrent bookings of one listing serialise and
// two overlapping stays can never both commit. Stays are compared with
// inclusive bounds: a stay starting on another's check-out day conflicts.
func (s *ReservationService) Book(ctx context.Context, req BookingRequest, callerID string) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The listing lock must be the first statement. Under InnoDB's
		// REPEATABLE READ the first plain read fixes the snapshot, and a
		// snapshot taken before the lock would miss a booking committed by
		// the previous lock holder.
		listing, listingErr := findListing(tx, req.ListingID, true)
		if listingErr != nil && !errors.Is(listingErr, domain.ErrNotFound) {
			return listingErr // Storage failure
		}

		user, err := findUser(tx, callerID)
		if err != nil {
			return err
		}
		if !user.Role.CanBook() {
			return domain.NewError(domain.ErrForbidden, "Only guests can make reservations") // Hosts cannot book
		}
		if listingErr != nil {
			return listingErr // Listing not found, reported after the role check
		}

		if domain.Nights(req.CheckIn, req.CheckOut) <= 0 {
			return domain.NewError(domain.ErrValidation, "Check-out must be at least one night after check-in")
		}
		if req.Guests < 1 {
			return domain.NewError(domain.ErrValidation, "Guests must be at least 1")
		}
		if req.Guests > listing.MaxGuests {
			return domain.NewError(domain.ErrValidation, "Number of guests exceeds maximum allowed")
		}
		if req.TotalPrice < 0 {
			return domain.NewError(domain.ErrValidation, "Total price cannot be negative")
		}

		var overlapping int64
		err = tx.Model(&domain.Reservation{}).
			Where("listing_id = ? AND check_in <= ? AND check_out >= ?", listing.ID, req.CheckOut, req.CheckIn).
			Count(&overlapping).Error // Sees rows committed before the lock was granted
		if err != nil {
			return fmt.Errorf("count overlapping reservations: %w", err)
		}
		if overlapping > 0 {
			return domain.NewError(domain.ErrConflict, "Dates overlap with another booking") // Double booking
		}

		reservation = domain.Reservation{
			UserID:     user.ID,
			ListingID:  listing.ID,
			CheckIn:    req.CheckIn,
			CheckOut:   req.CheckOut,
			Guests:     req.Guests,
			TotalPrice: req.TotalPrice,
		}
		if err := tx.Create(&reservation).Error; err != nil { // Insert while still holding the lock
			return fmt.Errorf("create reservation: %w", err)
		}
		reservation.Listing = listing // Embed the listing in the response
		return nil
	}, bookingTxOptions(s.db.Dialector.Name())...)
	if err != nil {
		var domainErr *domain.Error
		if !errors.As(err, &domainErr) {
			logrus.WithFields(logrus.Fields{
				"user_id":    callerID,
				"listing_id": req.ListingID,
				"error":      err.Error(),
			}).Error("Booking failed")
		}
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":        callerID,
		"listing_id":     req.ListingID,
		"reservation_id": reservation.ID,
		"check_in":       req.CheckIn.Format(dateLayout),
		"check_out":      req.CheckOut.Format(dateLayout),
	}).Info("Reservation booked")
	return &reservation, nil
}

// ListForUser returns the user's reservations with their listings, earliest check-in first
func (s *ReservationService) ListForUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := s.db.WithContext(ctx).
		Preload("Listing"). // Embed each booked listing
		Where("user_id = ?", userID).
		Order("check_in asc").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}

// Cancel deletes a reservation; only its booker may cancel it
func (s *ReservationService) Cancel(ctx context.Context, id, callerID string) (*Confirmation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation domain.Reservation
		err := tx.Where("id = ?", id).First(&reservation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewError(domain.ErrNotFound, "Reservation not found")
		}
		if err != nil {
			return fmt.Errorf("find reservation: %w", err)
		}
		if reservation.UserID != callerID {
			return domain.NewError(domain.ErrForbidden, "Not authorized to cancel this reservation") // Booker only
		}
		if err := tx.Delete(&reservation).Error; err != nil { // Cancelling removes the row
			return fmt.Errorf("delete reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user_id": callerID, "reservation_id": id}).Info("Reservation cancelled")
	return &Confirmation{Message: "Reservation cancelled successfully", ID: id}, nil
}

// bookingTxOptions runs bookings at READ COMMITTED where the driver supports
// isolation levels, so every read after the listing lock sees the latest
// committed reservations whatever the server default is
func bookingTxOptions(dialect string) []*sql.TxOptions {
	if dialect == "sqlite" {
		return nil // Single connection, transactions are already serial
	}
	return []*sql.TxOptions{{Isolation: sql.LevelReadCommitted}}
}

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp
// and returns it in UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.NewError(domain.ErrValidation, "Invalid date "+s+", expected YYYY-MM-DD")
}
