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

// Compile-time check to ensure RechargeRequestRepository implements the interface
var _ repositories.RechargeRequestRepository = (*RechargeRequestRepository)(nil)

// RechargeRequestRepository handles MongoDB operations for RechargeRequest
type RechargeRequestRepository struct {
	collection *mongo.Collection
}

// NewRechargeRequestRepository creates a new RechargeRequestRepository
func NewRechargeRequestRepository(db *mongo.Database) *RechargeRequestRepository {
	return &RechargeRequestRepository{
		collection: db.Collection("recharge_requests"),
	}
}

// Create inserts a new pending recharge request
func (r *RechargeRequestRepository) Create(ctx context.Context, request *models.RechargeRequest) error {
	request.ID = primitive.NewObjectID()
	request.Completed = false
	request.CreatedAt = time.Now().UTC()
	request.UpdatedAt = request.CreatedAt
	_, err := r.collection.InsertOne(ctx, request)
	return err
}

// FindLatestOpenByPhone returns the most recently created open request for the
// phone number. When several open requests exist the newest one wins.
func (r *RechargeRequestRepository) FindLatestOpenByPhone(ctx context.Context, phone string) (*models.RechargeRequest, error) {
	filter := bson.M{"customerNumber": phone, "completed": false}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var request models.RechargeRequest
	err := r.collection.FindOne(ctx, filter, opts).Decode(&request)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &request, nil
}

// FindByCheckoutID returns the request carrying the gateway checkout id
func (r *RechargeRequestRepository) FindByCheckoutID(ctx context.Context, checkoutID string) (*models.RechargeRequest, error) {
	var request models.RechargeRequest
	filter := bson.M{"checkoutRequestId": checkoutID}
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &request, nil
}

// Complete marks the request completed, compare-and-swap style. The
// completed=false condition in the filter makes the transition happen at most
// once; a concurrent duplicate delivery loses the race and gets
// ErrAlreadySettled.
func (r *RechargeRequestRepository) Complete(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "completed": false}
	update := bson.M{"$set": bson.M{"completed": true, "updatedAt": time.Now().UTC()}}

	var request models.RechargeRequest
	err := r.collection.FindOneAndUpdate(ctx, filter, update).Decode(&request)
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrAlreadySettled
	}
	return err
}

// Reopen reverts a claimed request to open after a failed settlement action
func (r *RechargeRequestRepository) Reopen(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"completed": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
