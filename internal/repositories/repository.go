package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jambotech/jambosms-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAlreadySettled is returned by RechargeRequestRepository.Complete when the
// request was already marked completed. Settlement treats this as a replayed
// callback and rejects it without applying any credit.
var ErrAlreadySettled = errors.New("recharge request already settled")

// InsufficientBalanceError is returned by DebitBalance when the company's
// balance cannot cover the requested units. It carries the current balance so
// handlers can tell the user how much is left.
type InsufficientBalanceError struct {
	Channel models.Channel
	Balance int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: %d units remaining", e.Channel, e.Balance)
}

// CompanyRepository defines the interface for company data operations.
// CreditBalance and DebitBalance are the only paths that mutate balances; both
// are single atomic read-modify-write operations on the company document.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)
	CreditBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error)
	DebitBalance(ctx context.Context, id primitive.ObjectID, channel models.Channel, units int64) (int64, error)
	ActivateBrand(ctx context.Context, id primitive.ObjectID) error
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RechargePlanRepository defines the interface for rate-table tiers. Find
// methods return tiers sorted ascending by price limit.
type RechargePlanRepository interface {
	Create(ctx context.Context, plan *models.RechargePlan) error
	FindGlobal(ctx context.Context) ([]*models.RechargePlan, error)
	FindByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RechargePlan, error)
}

// RechargeRequestRepository defines the interface for pending top-up requests.
type RechargeRequestRepository interface {
	Create(ctx context.Context, request *models.RechargeRequest) error
	// FindLatestOpenByPhone returns the most recently created request for the
	// phone number with completed=false. mongo.ErrNoDocuments when none exists.
	FindLatestOpenByPhone(ctx context.Context, phone string) (*models.RechargeRequest, error)
	// FindByCheckoutID returns the request carrying the gateway checkout id.
	FindByCheckoutID(ctx context.Context, checkoutID string) (*models.RechargeRequest, error)
	// Complete flips completed false->true as a compare-and-swap. Returns
	// ErrAlreadySettled if the transition already happened.
	Complete(ctx context.Context, id primitive.ObjectID) error
	// Reopen flips completed back to false. Used only when applying the
	// settlement action fails after the request was claimed, so the request
	// stays open for manual reconciliation instead of swallowing the payment.
	Reopen(ctx context.Context, id primitive.ObjectID) error
}

// PaymentRepository defines the interface for settled payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByCompany(ctx context.Context, companyID primitive.ObjectID, page, limit int) ([]*models.Payment, error)
}

// SentMessageRepository logs messages handed to outbound gateways.
type SentMessageRepository interface {
	Create(ctx context.Context, message *models.SentMessage) error
}

// BrandingFeeRepository stores the administrator-set branding fee.
type BrandingFeeRepository interface {
	Get(ctx context.Context) (*models.BrandingFee, error)
	Set(ctx context.Context, fee string) error
}
