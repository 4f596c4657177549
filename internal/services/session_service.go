package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
)

// SessionService defines the interface for quiz session tracking
type SessionService interface {
	Start(ctx context.Context, email string) (*models.Session, error)
	Finish(ctx context.Context, id string, downloaded bool) error
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(sessionRepo repositories.SessionRepository) SessionService {
	return &sessionService{sessionRepo: sessionRepo}
}

// Start records the beginning of a quiz pass
func (s *sessionService) Start(ctx context.Context, email string) (*models.Session, error) {
	session := &models.Session{
		Email:     email,
		StartTime: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apierr.Internal("creating session", err)
	}
	return session, nil
}

// Finish closes a session and records whether the result was downloaded
func (s *sessionService) Finish(ctx context.Context, id string, downloaded bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apierr.InvalidRequest("invalid session id %q", id)
	}

	session, err := s.sessionRepo.FindByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apierr.NotFound("session not found")
	}
	if err != nil {
		return apierr.Internal("looking up session", err)
	}

	session.EndTime = time.Now()
	session.Downloaded = downloaded
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return apierr.Internal("updating session", err)
	}
	return nil
}
