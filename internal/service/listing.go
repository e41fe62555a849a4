package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"booking_marketplace/internal/domain"
	"booking_marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultTake = 10
	maxTake     = 100
)

// sortColumns maps accepted sortBy values to listing columns
var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"pricePerNight": "price_per_night",
	"price":         "price_per_night",
	"maxGuests":     "max_guests",
	"title":         "title",
}

// ListingService is the listing directory
type ListingService struct {
	db    *gorm.DB
	cache *utils.Cache
}

// NewListingService creates a new ListingService. cache may be disabled.
func NewListingService(db *gorm.DB, cache *utils.Cache) *ListingService {
	return &ListingService{db: db, cache: cache}
}

// ListingInput carries the fields of a new listing
type ListingInput struct {
	Title         string
	Description   string
	PricePerNight float64
	Location      string
	Photos        []string
	Amenities     []string
	Category      string
	MaxGuests     int
}

// ListingPatch is a partial update; nil fields are left unchanged
type ListingPatch struct {
	Title         *string
	Description   *string
	PricePerNight *float64
	Location      *string
	Photos        *[]string
	Amenities     *[]string
	Category      *string
	MaxGuests     *int
}

// ListingQuery holds the optional criteria of list and filter
type ListingQuery struct {
	MinPrice  *float64
	MaxPrice  *float64
	Location  string
	Category  string   // filter only
	Amenities []string // filter only, listing must carry all of them
	Guests    int      // filter only, minimum capacity
	SortBy    string   // filter only
	Order     string   // filter only, asc or desc
	Skip      int
	Take      int
}

// Confirmation acknowledges a deletion
type Confirmation struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Create publishes a new listing owned by the caller, who must be a host
func (s *ListingService) Create(ctx context.Context, in ListingInput, callerID string) (*domain.Listing, error) {
	owner, err := findUser(s.db.WithContext(ctx), callerID) // Role is read from the database, not the token
	if err != nil {
		return nil, err
	}
	if !owner.Role.CanPublish() {
		return nil, domain.NewError(domain.ErrForbidden, "Only hosts can create listings")
	}
	if err := validateListing(in.Title, in.Description, in.Location, in.PricePerNight, in.MaxGuests); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		PricePerNight: in.PricePerNight,
		Location:      strings.TrimSpace(in.Location),
		Photos:        datatypes.JSONSlice[string](nonNil(in.Photos)),
		Amenities:     datatypes.JSONSlice[string](NormalizeAmenities(in.Amenities)),
		Category:      strings.TrimSpace(in.Category),
		MaxGuests:     in.MaxGuests,
		OwnerID:       owner.ID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(listing).Error; err != nil { // Insert listing without touching the owner
			return fmt.Errorf("create listing: %w", err)
		}
		return writeAmenityIndex(tx, listing) // One row per amenity tag
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"owner_id": owner.ID, "error": err.Error()}).Error("Failed to create listing")
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"owner_id": owner.ID, "listing_id": listing.ID}).Info("Listing created")
	return listing, nil
}

// List returns listings in insertion order, narrowed by price range and a
// case-sensitive location substring
func (s *ListingService) List(ctx context.Context, q ListingQuery) ([]domain.Listing, error) {
	query := s.db.WithContext(ctx).Model(&domain.Listing{})
	query = applyPriceRange(query, q)
	if q.Location != "" {
		query = query.Where(containsExpr(s.dialect(), "location", true), q.Location)
	}
	skip, take := page(q) // Clamp pagination
	var listings []domain.Listing
	if err := query.Order("created_at asc").Offset(skip).Limit(take).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// Filter is List plus category, amenity, capacity criteria and explicit sorting
func (s *ListingService) Filter(ctx context.Context, q ListingQuery) ([]domain.Listing, error) {
	column := "created_at"
	if q.SortBy != "" {
		c, ok := sortColumns[q.SortBy]
		if !ok {
			return nil, domain.NewError(domain.ErrValidation, "Unsupported sortBy value") // Only whitelisted columns
		}
		column = c
	}
	desc := true
	switch strings.ToLower(q.Order) {
	case "":
	case "asc":
		desc = false
	case "desc":
		desc = true
	default:
		return nil, domain.NewError(domain.ErrValidation, "Order must be asc or desc")
	}

	query := s.db.WithContext(ctx).Model(&domain.Listing{})
	query = applyPriceRange(query, q)
	if q.Location != "" {
		query = query.Where(containsExpr(s.dialect(), "location", false), strings.ToLower(q.Location))
	}
	if q.Category != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(q.Category))
	}
	if q.Guests > 0 {
		query = query.Where("max_guests >= ?", q.Guests) // Room for the whole party
	}
	if amenities := NormalizeAmenities(q.Amenities); len(amenities) > 0 {
		having := s.db.Model(&domain.ListingAmenity{}).
			Select("listing_id").
			Where("name IN ?", amenities).
			Group("listing_id").
			Having("COUNT(DISTINCT name) = ?", len(amenities))
		query = query.Where("id IN (?)", having) // Listings carrying every requested tag
	}

	skip, take := page(q)
	var listings []domain.Listing
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}).
		Offset(skip).
		Limit(take).
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("filter listings: %w", err)
	}
	return listings, nil
}

// GetByID returns a single listing, served from the cache when possible
func (s *ListingService) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing domain.Listing
	found, err := s.cache.Get(ctx, listingCacheKey(id), &listing) // Try cache first
	if err != nil {
		logrus.WithFields(logrus.Fields{"listing_id": id, "error": err.Error()}).Warn("Listing cache read failed")
	}
	if err == nil && found {
		return &listing, nil // Cache hit
	}

	l, err := findListing(s.db.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, listingCacheKey(id), l); err != nil { // Populate cache
		logrus.WithFields(logrus.Fields{"listing_id": id, "error": err.Error()}).Warn("Listing cache write failed")
	}
	return l, nil
}

// Update applies a partial update; only the owner may update a listing
func (s *ListingService) Update(ctx context.Context, id, callerID string, patch ListingPatch) (*domain.Listing, error) {
	var listing *domain.Listing
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findListing(tx, id, true) // Lock the row for the update
		if err != nil {
			return err
		}
		if !existing.OwnedBy(callerID) {
			return domain.NewError(domain.ErrForbidden, "Not authorized") // Owner only
		}

		updates, err := patchUpdates(existing, patch)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("update listing: %w", err)
			}
		}
		if patch.Amenities != nil {
			if err := tx.Where("listing_id = ?", id).Delete(&domain.ListingAmenity{}).Error; err != nil {
				return fmt.Errorf("clear amenity index: %w", err)
			}
			existing.Amenities = datatypes.JSONSlice[string](NormalizeAmenities(*patch.Amenities))
			if err := writeAmenityIndex(tx, existing); err != nil {
				return err
			}
		}
		listing, err = findListing(tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.evict(ctx, id) // Drop the stale cache entry
	logrus.WithFields(logrus.Fields{"owner_id": callerID, "listing_id": id}).Info("Listing updated")
	return listing, nil
}

// Delete removes a listing with its amenity index and reservations; only the
// owner may delete a listing
func (s *ListingService) Delete(ctx context.Context, id, callerID string) (*Confirmation, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findListing(tx, id, true)
		if err != nil {
			return err
		}
		if !existing.OwnedBy(callerID) {
			return domain.NewError(domain.ErrForbidden, "Not authorized")
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Reservation{}).Error; err != nil { // Cascade to bookings
			return fmt.Errorf("delete listing reservations: %w", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.ListingAmenity{}).Error; err != nil {
			return fmt.Errorf("delete amenity index: %w", err)
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evict(ctx, id) // Drop the cache entry
	logrus.WithFields(logrus.Fields{"owner_id": callerID, "listing_id": id}).Info("Listing deleted")
	return &Confirmation{Message: "Listing deleted successfully", ID: id}, nil
}

// ParseAmenities splits a comma-joined amenity list into a set
func ParseAmenities(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return NormalizeAmenities(strings.Split(csv, ","))
}

// NormalizeAmenities trims tags, drops empty ones and removes duplicates
func NormalizeAmenities(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (s *ListingService) dialect() string {
	return s.db.Dialector.Name()
}

func (s *ListingService) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, listingCacheKey(id)); err != nil {
		logrus.WithFields(logrus.Fields{"listing_id": id, "error": err.Error()}).Warn("Listing cache eviction failed")
	}
}

func listingCacheKey(id string) string {
	return "listing:" + id
}

// findListing loads a listing, optionally locking its row until the
// surrounding transaction ends
func findListing(tx *gorm.DB, id string, lock bool) (*domain.Listing, error) {
	// SQLite has no row locks; its single writer connection serialises instead
	if lock && tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var listing domain.Listing
	err := tx.Where("id = ?", id).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "Listing not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &listing, nil
}

func writeAmenityIndex(tx *gorm.DB, listing *domain.Listing) error {
	rows := listing.AmenityRows()
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("write amenity index: %w", err)
	}
	return nil
}

func validateListing(title, description, location string, price float64, maxGuests int) error {
	switch {
	case strings.TrimSpace(title) == "":
		return domain.NewError(domain.ErrValidation, "Title is required")
	case strings.TrimSpace(description) == "":
		return domain.NewError(domain.ErrValidation, "Description is required")
	case strings.TrimSpace(location) == "":
		return domain.NewError(domain.ErrValidation, "Location is required")
	case price <= 0:
		return domain.NewError(domain.ErrValidation, "Price per night must be positive")
	case maxGuests < 1:
		return domain.NewError(domain.ErrValidation, "Max guests must be at least 1")
	}
	return nil
}

// patchUpdates converts a patch into a column map after validating the
// merged result
func patchUpdates(existing *domain.Listing, p ListingPatch) (map[string]any, error) {
	merged := *existing
	updates := map[string]any{}
	if p.Title != nil {
		merged.Title = strings.TrimSpace(*p.Title)
		updates["title"] = merged.Title
	}
	if p.Description != nil {
		merged.Description = *p.Description
		updates["description"] = merged.Description
	}
	if p.PricePerNight != nil {
		merged.PricePerNight = *p.PricePerNight
		updates["price_per_night"] = merged.PricePerNight
	}
	if p.Location != nil {
		merged.Location = strings.TrimSpace(*p.Location)
		updates["location"] = merged.Location
	}
	if p.Photos != nil {
		updates["photos"] = datatypes.JSONSlice[string](nonNil(*p.Photos))
	}
	if p.Amenities != nil {
		updates["amenities"] = datatypes.JSONSlice[string](NormalizeAmenities(*p.Amenities))
	}
	if p.Category != nil {
		updates["category"] = strings.TrimSpace(*p.Category)
	}
	if p.MaxGuests != nil {
		merged.MaxGuests = *p.MaxGuests
		updates["max_guests"] = merged.MaxGuests
	}
	if err := validateListing(merged.Title, merged.Description, merged.Location, merged.PricePerNight, merged.MaxGuests); err != nil {
		return nil, err
	}
	return updates, nil
}

func applyPriceRange(query *gorm.DB, q ListingQuery) *gorm.DB {
	if q.MinPrice != nil {
		query = query.Where("price_per_night >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		query = query.Where("price_per_night <= ?", *q.MaxPrice)
	}
	return query
}

// containsExpr builds a substring predicate for column. INSTR/STRPOS avoid
// LIKE wildcards in user input.
func containsExpr(dialect, column string, caseSensitive bool) string {
	col := column
	if !caseSensitive {
		col = "LOWER(" + column + ")"
	}
	switch dialect {
	case "postgres":
		return "STRPOS(" + col + ", ?) > 0"
	case "mysql":
		if caseSensitive {
			col = "BINARY " + column
		}
		return "INSTR(" + col + ", ?) > 0"
	default:
		return "INSTR(" + col + ", ?) > 0"
	}
}

func page(q ListingQuery) (skip, take int) {
	skip, take = q.Skip, q.Take
	if skip < 0 {
		skip = 0
	}
	if take <= 0 {
		take = defaultTake
	}
	if take > maxTake {
		take = maxTake
	}
	return skip, take
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
