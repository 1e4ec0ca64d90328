package services

import (
	"context"
	"errors"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/sms"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service-level failure classes. Handlers map these onto HTTP statuses with
// errors.Is; none of them is retried internally.
var (
	// ErrNoRatePlans means the resolved rate table is empty. This is an
	// administrator-facing configuration error, not a zero-result.
	ErrNoRatePlans = errors.New("no recharge plans configured")
	// ErrNoPendingRequest means a callback could not be matched to any open
	// recharge request.
	ErrNoPendingRequest = errors.New("no matching pending recharge request")
	// ErrInvalidWindow means the callback's transaction time fell outside the
	// validity window relative to the pending request.
	ErrInvalidWindow = errors.New("invalid request")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrBrandingNotRequested means a brand payment was initiated by a company
	// that never requested branding.
	ErrBrandingNotRequested = errors.New("please request for branding before you pay for it")
	// ErrBrandingFeeNotSet means no branding fee has been configured.
	ErrBrandingFeeNotSet = errors.New("branding fee is not set")
	// ErrWrongBrandingFee means a brand payment amount does not match the fee.
	ErrWrongBrandingFee = errors.New("amount does not match the branding fee")
)

// LedgerService owns all mutation of company balances.
type LedgerService interface {
	// Credit adds units to the channel balance and returns the new balance.
	Credit(ctx context.Context, companyID primitive.ObjectID, channel models.Channel, units int64) (int64, error)
	// Debit removes units from the channel balance. It fails with
	// *repositories.InsufficientBalanceError when the balance is short, in
	// which case nothing is applied.
	Debit(ctx context.Context, companyID primitive.ObjectID, channel models.Channel, units int64) (int64, error)
}

// RatePlanService resolves rate tables and converts paid amounts into units.
type RatePlanService interface {
	// UnitsFor rates an amount against the company's billing scope: the parent
	// reseller's own tiers when the company is reseller-sponsored, the global
	// table otherwise.
	UnitsFor(ctx context.Context, company *models.Company, amount decimal.Decimal) (int64, error)
	CreateGlobalPlan(ctx context.Context, plan *models.RechargePlan) error
	CreateResellerPlan(ctx context.Context, companyID primitive.ObjectID, plan *models.RechargePlan) error
	ListGlobalPlans(ctx context.Context) ([]*models.RechargePlan, error)
	ListResellerPlans(ctx context.Context, companyID primitive.ObjectID) ([]*models.RechargePlan, error)
}

// RechargeService opens pending top-up requests against the payment gateway.
type RechargeService interface {
	// Open initiates the STK push and records the pending request. Fails with
	// mpesa.ErrGatewayUnavailable when initiation fails; the user may retry
	// the whole operation.
	Open(ctx context.Context, company *models.Company, phone string, amount int64, purpose models.Purpose) (*models.RechargeRequest, error)
	// LookupOpen returns the most recent open request for the phone number,
	// or ErrNoPendingRequest.
	LookupOpen(ctx context.Context, phone string) (*models.RechargeRequest, error)
}

// SettlementOutcome is the terminal state of one processed callback.
type SettlementOutcome string

const (
	// OutcomeApplied: the payment was matched, validated and credited.
	OutcomeApplied SettlementOutcome = "applied"
	// OutcomePaymentFailed: the gateway reported a failed payment; the pending
	// request stays open so the user can retry.
	OutcomePaymentFailed SettlementOutcome = "payment_failed"
)

// SettlementResult records a terminally processed callback.
type SettlementResult struct {
	Outcome       SettlementOutcome       `json:"outcome"`
	Request       *models.RechargeRequest `json:"request,omitempty"`
	Payment       *models.Payment         `json:"payment,omitempty"`
	UnitsCredited int64                   `json:"unitsCredited,omitempty"`
	NewBalance    int64                   `json:"newBalance,omitempty"`
}

// SettlementService reconciles gateway callbacks against pending requests.
type SettlementService interface {
	// Handle drives one callback to its terminal outcome. A non-nil error is
	// a rejection: nothing was credited and the callback is not retried here.
	Handle(ctx context.Context, envelope *mpesa.CallbackEnvelope) (*SettlementResult, error)
}

// MessagingService meters, debits and dispatches outbound sends.
type MessagingService interface {
	// SendBulk sends the same message to every recipient. Returns the unit
	// cost that was debited; the actual gateway sends happen asynchronously.
	SendBulk(ctx context.Context, company *models.Company, message string, recipients []string) (int64, error)
	// SendPersonalized renders and sends one message per contact, each costed
	// independently.
	SendPersonalized(ctx context.Context, company *models.Company, message, greeting string, contacts []sms.Contact) (int64, error)
	// SendEmail sends an email to every recipient at one unit per recipient.
	SendEmail(ctx context.Context, company *models.Company, subject, body string, recipients []string) (int64, error)
	// Notify sends a system SMS (payment confirmations and the like) without
	// touching any balance.
	Notify(phone, message string)
}

// AuthService authenticates users for the protected API surface.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}
