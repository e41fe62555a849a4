package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking_marketplace/internal/domain"
	"booking_marketplace/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityService handles signup, login and session token verification
type IdentityService struct {
	db         *gorm.DB
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration, bcryptCost int) *IdentityService {
	return &IdentityService{
		db:         db,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

// SignupInput carries the fields of a new account
type SignupInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role // Empty means GUEST
}

// AuthResult is a signed session token plus the account it was issued for
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Signup registers a new account and issues a session token
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email) // Trimmed and lower-cased
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.NewError(domain.ErrValidation, "Email, password and name are required")
	}
	role, err := domain.ParseRole(string(in.Role)) // Normalise to HOST or GUEST, empty means GUEST
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("count users by email: %w", err)
	}
	if existing > 0 {
		return nil, domain.NewError(domain.ErrConflict, "Email already registered") // Email taken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost) // Hash password
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(in.Name),
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewError(domain.ErrConflict, "Email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(user) // Issue session token
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User signed up")
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords fail identically.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvalidCredentials // Unknown email
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials // Wrong password
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("User logged in")
	return &AuthResult{Token: token, User: &user}, nil
}

// Authenticate validates a bearer token by signature and expiry only
func (s *IdentityService) Authenticate(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.NewError(domain.ErrUnauthorized, "Missing or invalid Authorization header")
	}
	claims, err := utils.ParseJWT(token, s.jwtSecret) // Verify signature and expiry
	if err != nil {
		return domain.Identity{}, domain.NewError(domain.ErrUnauthorized, "Invalid or expired token")
	}
	return domain.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// GetUser returns the account with the given id
func (s *IdentityService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return findUser(s.db.WithContext(ctx), id)
}

func (s *IdentityService) issueToken(user *domain.User) (string, error) {
	token, err := utils.GenerateJWT(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate jwt: %w", err)
	}
	return token, nil
}

func findUser(tx *gorm.DB, id string) (*domain.User, error) {
	var user domain.User
	err := tx.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
