package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records one successfully settled gateway callback. Amount is kept as
// a decimal string; it is parsed with shopspring/decimal wherever math is done.
type Payment struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CompanyID          primitive.ObjectID `bson:"companyId" json:"companyId"`
	Amount             string             `bson:"amount" json:"amount"`
	PaymentAction      Purpose            `bson:"paymentAction" json:"paymentAction"`
	MpesaReceiptNumber string             `bson:"mpesaReceiptNumber" json:"mpesaReceiptNumber"`
	PhoneNumber        string             `bson:"phoneNumber" json:"phoneNumber"`
	TransactionDate    time.Time          `bson:"transactionDate" json:"transactionDate"`
	RefNo              string             `bson:"refNo" json:"refNo"`
	ResultCode         int                `bson:"resultCode" json:"resultCode"`
	ResultDesc         string             `bson:"resultDesc" json:"resultDesc"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// BrandingFee is the administrator-set price of activating SMS branding.
// Stored as a single document; the fee is a decimal string.
type BrandingFee struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fee       string             `bson:"fee" json:"fee"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
