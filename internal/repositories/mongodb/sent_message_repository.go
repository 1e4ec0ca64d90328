package mongodb

import (
	"context"
	"time"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure SentMessageRepository implements the interface
var _ repositories.SentMessageRepository = (*SentMessageRepository)(nil)

// SentMessageRepository handles MongoDB operations for SentMessage
type SentMessageRepository struct {
	collection *mongo.Collection
}

// NewSentMessageRepository creates a new SentMessageRepository
func NewSentMessageRepository(db *mongo.Database) *SentMessageRepository {
	return &SentMessageRepository{
		collection: db.Collection("sent_messages"),
	}
}

// Create inserts a new sent-message log entry
func (r *SentMessageRepository) Create(ctx context.Context, message *models.SentMessage) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, message)
	return err
}
