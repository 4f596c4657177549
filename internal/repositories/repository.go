package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	FindByMarketingConsent(ctx context.Context, consent bool) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// SessionRepository defines the interface for quiz session tracking
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error)
	Update(ctx context.Context, session *models.Session) error
}

// ToSRepository defines the interface for terms-of-service documents. The
// schema version methods back the startup migration.
type ToSRepository interface {
	FindByPlatform(ctx context.Context, platform models.ToSPlatform) (*models.ToS, error)
	Upsert(ctx context.Context, tos *models.ToS) error
	SchemaVersion(ctx context.Context) (int, error)
	SetSchemaVersion(ctx context.Context, version int) error
}

// AdminRepository defines the interface for administrator accounts
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}
