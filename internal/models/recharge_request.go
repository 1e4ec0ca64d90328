package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purpose tags what a payment was initiated for and selects the settlement
// action applied when the gateway confirms it.
type Purpose string

const (
	PurposeSMSTopup     Purpose = "sms_topup"
	PurposeEmailTopup   Purpose = "email_topup"
	PurposeBrandPayment Purpose = "brand_payment"
)

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	switch p {
	case PurposeSMSTopup, PurposeEmailTopup, PurposeBrandPayment:
		return true
	}
	return false
}

// RechargeRequest is one pending top-up: a row is written after the STK push
// is accepted by the gateway and before the asynchronous callback arrives.
// The Completed flag flips false->true exactly once, inside settlement, and is
// the idempotency guard against replayed callbacks.
type RechargeRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyID         primitive.ObjectID `bson:"companyId" json:"companyId"`
	CustomerNumber    string             `bson:"customerNumber" json:"customerNumber"`
	CheckoutRequestID string             `bson:"checkoutRequestId" json:"checkoutRequestId"`
	ResponseCode      string             `bson:"responseCode" json:"responseCode"`
	Purpose           Purpose            `bson:"purpose" json:"purpose"`
	Completed         bool               `bson:"completed" json:"completed"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
