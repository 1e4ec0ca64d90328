package mongodb

import (
	"context"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure RechargePlanRepository implements the interface
var _ repositories.RechargePlanRepository = (*RechargePlanRepository)(nil)

// RechargePlanRepository handles MongoDB operations for RechargePlan
type RechargePlanRepository struct {
	collection *mongo.Collection
}

// NewRechargePlanRepository creates a new RechargePlanRepository
func NewRechargePlanRepository(db *mongo.Database) *RechargePlanRepository {
	return &RechargePlanRepository{
		collection: db.Collection("recharge_plans"),
	}
}

// Create inserts a new rate tier
func (r *RechargePlanRepository) Create(ctx context.Context, plan *models.RechargePlan) error {
	plan.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

func (r *RechargePlanRepository) findSorted(ctx context.Context, filter bson.M) ([]*models.RechargePlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priceLimit", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []*models.RechargePlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []*models.RechargePlan{}
	}
	return plans, nil
}

// FindGlobal returns the global rate table sorted ascending by price limit
func (r *RechargePlanRepository) FindGlobal(ctx context.Context) ([]*models.RechargePlan, error) {
	return r.findSorted(ctx, bson.M{"companyId": nil})
}

// FindByCompany returns a reseller's own rate table sorted ascending by price limit
func (r *RechargePlanRepository) FindByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RechargePlan, error) {
	return r.findSorted(ctx, bson.M{"companyId": companyID})
}
