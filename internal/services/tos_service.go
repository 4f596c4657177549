package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
)

// tosSchemaVersion is the terms-of-service schema this build expects.
// Version 1 seeded the per-platform link documents.
const tosSchemaVersion = 1

// placeholderToSLink is written by the seeding migration and replaced by an
// admin through the update endpoint.
const placeholderToSLink = "https://example.com"

// ToSService defines the interface for terms-of-service operations. It also
// implements migrate.Database so the seed migration runs at startup.
type ToSService interface {
	Get(ctx context.Context, platform models.ToSPlatform) (*models.ToS, error)
	Update(ctx context.Context, tos *models.ToS) error

	Name() string
	TargetVersion() int
	StoredVersion(ctx context.Context) (int, error)
	SetStoredVersion(ctx context.Context, version int) error
	MigrateStep(ctx context.Context, to int) error
}

type tosService struct {
	tosRepo repositories.ToSRepository
}

// NewToSService creates a new ToSService
func NewToSService(tosRepo repositories.ToSRepository) ToSService {
	return &tosService{tosRepo: tosRepo}
}

// Get returns the terms-of-service document for a platform
func (s *tosService) Get(ctx context.Context, platform models.ToSPlatform) (*models.ToS, error) {
	if !platform.Valid() {
		return nil, apierr.InvalidRequest("unknown platform %q", platform)
	}

	tos, err := s.tosRepo.FindByPlatform(ctx, platform)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierr.NotFound("no terms of service found for platform %q", platform)
	}
	if err != nil {
		return nil, apierr.Internal("looking up terms of service", err)
	}
	return tos, nil
}

// Update writes a platform's terms-of-service document
func (s *tosService) Update(ctx context.Context, tos *models.ToS) error {
	if !tos.Platform.Valid() {
		return apierr.InvalidRequest("unknown platform %q", tos.Platform)
	}
	if err := s.tosRepo.Upsert(ctx, tos); err != nil {
		return apierr.Internal("updating terms of service", err)
	}
	return nil
}

// Name implements migrate.Database.
func (s *tosService) Name() string { return "tos" }

// TargetVersion implements migrate.Database.
func (s *tosService) TargetVersion() int { return tosSchemaVersion }

// StoredVersion implements migrate.Database.
func (s *tosService) StoredVersion(ctx context.Context) (int, error) {
	return s.tosRepo.SchemaVersion(ctx)
}

// SetStoredVersion implements migrate.Database.
func (s *tosService) SetStoredVersion(ctx context.Context, version int) error {
	return s.tosRepo.SetSchemaVersion(ctx, version)
}

// MigrateStep implements migrate.Database.
func (s *tosService) MigrateStep(ctx context.Context, to int) error {
	switch to {
	case 1:
		for _, platform := range []models.ToSPlatform{models.ToSPlatformIOS, models.ToSPlatformQuiz} {
			if _, err := s.tosRepo.FindByPlatform(ctx, platform); err == nil {
				continue
			} else if !errors.Is(err, mongo.ErrNoDocuments) {
				return err
			}

			tos := &models.ToS{
				Platform: platform,
				Link:     placeholderToSLink,
				Version:  "1",
			}
			if err := s.tosRepo.Upsert(ctx, tos); err != nil {
				return err
			}
		}
	}
	return nil
}
