package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SentMessage logs one message handed to an outbound gateway.
type SentMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyID primitive.ObjectID `bson:"companyId,omitempty" json:"companyId,omitempty"`
	Channel   Channel            `bson:"channel" json:"channel"`
	Recipient string             `bson:"recipient" json:"recipient"`
	MessageID string             `bson:"messageId" json:"messageId"`
	Status    string             `bson:"status" json:"status"`
	Units     int64              `bson:"units" json:"units"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
