package mongodb

import (
	"context"
	"time"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure BrandingFeeRepository implements the interface
var _ repositories.BrandingFeeRepository = (*BrandingFeeRepository)(nil)

// BrandingFeeRepository stores the branding fee as a single document
type BrandingFeeRepository struct {
	collection *mongo.Collection
}

// NewBrandingFeeRepository creates a new BrandingFeeRepository
func NewBrandingFeeRepository(db *mongo.Database) *BrandingFeeRepository {
	return &BrandingFeeRepository{
		collection: db.Collection("branding_fee"),
	}
}

// Get returns the configured branding fee
func (r *BrandingFeeRepository) Get(ctx context.Context) (*models.BrandingFee, error) {
	var fee models.BrandingFee
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&fee)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments when no fee is set
	}
	return &fee, nil
}

// Set upserts the branding fee
func (r *BrandingFeeRepository) Set(ctx context.Context, fee string) error {
	update := bson.M{"$set": bson.M{"fee": fee, "updatedAt": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, opts)
	return err
}
