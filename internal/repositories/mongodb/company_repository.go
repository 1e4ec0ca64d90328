package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CompanyRepository implements the interface
var _ repositories.CompanyRepository = (*CompanyRepository)(nil)

// CompanyRepository handles MongoDB operations for Company
type CompanyRepository struct {
	collection *mongo.Collection
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{
		collection: db.Collection("companies"),
	}
}

// Create inserts a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	company.ID = primitive.NewObjectID()
	company.CreatedAt = time.Now().UTC()
	company.UpdatedAt = company.CreatedAt
	_, err := r.collection.InsertOne(ctx, company)
	return err
}

// FindByID finds a company by ID, excluding soft-deleted ones
func (r *CompanyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	filter := bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}
	err := r.collection.FindOne(ctx, filter).Decode(&company)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &company, nil
}

// CreditBalance atomically increments the channel balance and returns the new
// balance.
func (r *CompanyRepository) CreditBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	if units <= 0 {
		return 0, errors.New("units to credit must be positive")
	}
	field := channel.BalanceField()
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{field: units},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var company models.Company
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&company); err != nil {
		return 0, err
	}
	return company.Balance(channel), nil
}

// DebitBalance atomically decrements the channel balance, rejecting the debit
// when the balance is short. The balance check and the decrement are a single
// conditional update so concurrent debits cannot both pass against a stale
// balance.
func (r *CompanyRepository) DebitBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error) {
	if units <= 0 {
		return 0, errors.New("units to debit must be positive")
	}
	field := channel.BalanceField()
	filter := bson.M{"_id": id, field: bson.M{"$gte": units}}
	update := bson.M{
		"$inc": bson.M{field: -units},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var company models.Company
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&company)
	if err == nil {
		return company.Balance(channel), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	// No document matched: either the company is unknown or the balance is
	// short. Look it up to tell the two apart and report the current balance.
	current, lookupErr := r.FindByID(ctx, id)
	if lookupErr != nil {
		return 0, lookupErr
	}
	return 0, &repositories.InsufficientBalanceError{Channel: channel, Balance: current.Balance(channel)}
}

// ActivateBrand flips the embedded brand to active
func (r *CompanyRepository) ActivateBrand(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "brand": bson.M{"$ne": nil}}
	update := bson.M{"$set": bson.M{"brand.isActive": true, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
