package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
)

// UserService defines the interface for user operations
type UserService interface {
	Register(ctx context.Context, email string, source models.UserSource, marketing bool) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	MarketingEmails(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Register creates a user record. Registering an existing email is a client
// error rather than a merge.
func (s *userService) Register(ctx context.Context, email string, source models.UserSource, marketing bool) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, apierr.InvalidRequest("user already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.Internal("looking up user", err)
	}

	user := &models.User{
		Email:            email,
		Sources:          []models.UserSource{source},
		MarketingConsent: marketing,
		PhotoConsent:     false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apierr.Internal("creating user", err)
	}
	return user, nil
}

// GetByEmail looks a user up by email
func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.NotFound("user not found")
	}
	if err != nil {
		return nil, apierr.Internal("looking up user", err)
	}
	return user, nil
}

// GetAll lists every user
func (s *userService) GetAll(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, apierr.Internal("listing users", err)
	}
	return users, nil
}

// MarketingEmails lists the emails of users who consented to marketing
func (s *userService) MarketingEmails(ctx context.Context) ([]string, error) {
	users, err := s.userRepo.FindByMarketingConsent(ctx, true)
	if err != nil {
		return nil, apierr.Internal("listing marketing emails", err)
	}

	emails := make([]string, 0, len(users))
	for _, user := range users {
		emails = append(emails, user.Email)
	}
	return emails, nil
}

// Delete removes a user by id
func (s *userService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apierr.InvalidRequest("invalid user id %q", id)
	}
	if err := s.userRepo.Delete(ctx, oid); err != nil {
		return apierr.Internal("deleting user", err)
	}
	return nil
}
