package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
)

// AuthService defines the interface for admin authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, email, name, password string) (*models.Admin, error)
}

type authService struct {
	adminRepo repositories.AdminRepository
	jwtSecret []byte
	expiresIn time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(adminRepo repositories.AdminRepository, jwtSecret string, expiresIn time.Duration) AuthService {
	return &authService{
		adminRepo: adminRepo,
		jwtSecret: []byte(jwtSecret),
		expiresIn: expiresIn,
	}
}

// Login checks admin credentials and issues a signed token. Unknown emails
// and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.InvalidRequest("invalid email or password")
	}
	if err != nil {
		return nil, apierr.Internal("looking up admin account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierr.InvalidRequest("invalid email or password")
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"exp":   time.Now().Add(s.expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apierr.Internal("signing token", err)
	}

	return &models.LoginResponse{Token: signed}, nil
}

// Register creates an admin account with a hashed password.
func (s *authService) Register(ctx context.Context, email, name, password string) (*models.Admin, error) {
	if _, err := s.adminRepo.FindByEmail(ctx, email); err == nil {
		return nil, apierr.InvalidRequest("an admin with email %q already exists", email)
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.Internal("looking up admin account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal("hashing password", err)
	}

	admin := &models.Admin{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, apierr.Internal("creating admin account", err)
	}
	return admin, nil
}
