package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel identifies which prepaid balance a send or a top-up touches.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// BalanceField returns the bson field holding the balance for the channel.
func (c Channel) BalanceField() string {
	if c == ChannelEmail {
		return "emailCount"
	}
	return "smsCount"
}

// Brand holds a company's SMS sender branding. It is embedded on the company
// document; the brand becomes usable only once it is both approved by an
// administrator and activated by a successful brand payment.
type Brand struct {
	Name       string `bson:"name" json:"name"`
	IsActive   bool   `bson:"isActive" json:"isActive"`
	IsApproved bool   `bson:"isApproved" json:"isApproved"`
}

// Company represents a billing tenant owning prepaid SMS and email balances.
// Balance fields are mutated only through CompanyRepository's atomic
// credit/debit operations and must never go negative.
type Company struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string              `bson:"name" json:"name"`
	County     string              `bson:"county,omitempty" json:"county,omitempty"`
	SMSCount   int64               `bson:"smsCount" json:"smsCount"`
	EmailCount int64               `bson:"emailCount" json:"emailCount"`
	IsReseller bool                `bson:"isReseller" json:"isReseller"`
	ParentID   *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	Brand      *Brand              `bson:"brand,omitempty" json:"brand,omitempty"`
	IsDeleted  bool                `bson:"isDeleted" json:"-"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Balance returns the current balance for the given channel.
func (c *Company) Balance(channel Channel) int64 {
	if channel == ChannelEmail {
		return c.EmailCount
	}
	return c.SMSCount
}

// IsBranded reports whether the company has requested branding at all.
func (c *Company) IsBranded() bool {
	return c.Brand != nil
}
