package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/repositories"
)

var _ repositories.ToSRepository = (*ToSRepository)(nil)

// ToSRepository handles MongoDB operations for terms-of-service documents
type ToSRepository struct {
	collection *mongo.Collection
	meta       *mongo.Collection
}

// NewToSRepository creates a new ToSRepository
func NewToSRepository(db *mongo.Database) *ToSRepository {
	return &ToSRepository{
		collection: db.Collection("tos"),
		meta:       db.Collection("meta"),
	}
}

// FindByPlatform finds the terms-of-service document for a platform
func (r *ToSRepository) FindByPlatform(ctx context.Context, platform models.ToSPlatform) (*models.ToS, error) {
	var tos models.ToS
	err := r.collection.FindOne(ctx, bson.M{"_id": platform}).Decode(&tos)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &tos, nil
}

// Upsert writes the terms-of-service document for its platform
func (r *ToSRepository) Upsert(ctx context.Context, tos *models.ToS) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tos.Platform}, tos, opts)
	return err
}

// SchemaVersion reads the stored schema version, 0 when none is recorded yet
func (r *ToSRepository) SchemaVersion(ctx context.Context) (int, error) {
	var doc struct {
		Version int `bson:"version"`
	}
	err := r.meta.FindOne(ctx, bson.M{"_id": "tos"}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return doc.Version, nil
}

// SetSchemaVersion persists the schema version
func (r *ToSRepository) SetSchemaVersion(ctx context.Context, version int) error {
	opts := options.Update().SetUpsert(true)
	_, err := r.meta.UpdateOne(ctx, bson.M{"_id": "tos"},
		bson.M{"$set": bson.M{"version": version}}, opts)
	return err
}
