package models

import (
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RechargePlan is one tier of the rate table used to convert a paid amount
// into message units. A plan with a nil CompanyID belongs to the global table;
// otherwise it belongs to exactly one reseller company. PriceLimit values are
// unique within an owner scope.
//
// Rate is stored as its decimal string representation so that currency math
// never passes through binary floating point.
type RechargePlan struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string              `bson:"name" json:"name"`
	PriceLimit int64               `bson:"priceLimit" json:"priceLimit"`
	Rate       string              `bson:"rate" json:"rate"`
	CompanyID  *primitive.ObjectID `bson:"companyId,omitempty" json:"companyId,omitempty"`
}

// RateDecimal parses the stored rate. A plan with an unparseable rate is a
// configuration error surfaced to the caller.
func (p *RechargePlan) RateDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.Rate)
}
