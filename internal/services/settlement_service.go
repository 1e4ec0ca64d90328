package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
)

// settlementWindow is how long after a recharge request was opened its
// callback is still considered authentic. Callbacks dated before the request
// or after the window are rejected as stale, replayed or clock-skewed.
const settlementWindow = 60 * time.Second

// Compile-time check to ensure SettlementServiceImpl implements SettlementService
var _ SettlementService = (*SettlementServiceImpl)(nil)

// SettlementServiceImpl drives a gateway callback through
// parse -> match -> validate -> apply. Every callback ends in exactly one
// terminal outcome; the completed flag's compare-and-swap is the idempotency
// guard, the timing window is only a freshness check.
type SettlementServiceImpl struct {
	recharge    RechargeService
	ratePlans   RatePlanService
	ledger      LedgerService
	companyRepo repositories.CompanyRepository
	requestRepo repositories.RechargeRequestRepository
	paymentRepo repositories.PaymentRepository
	messaging   MessagingService
}

// NewSettlementService creates a new SettlementServiceImpl
func NewSettlementService(
	recharge RechargeService,
	ratePlans RatePlanService,
	ledger LedgerService,
	companyRepo repositories.CompanyRepository,
	requestRepo repositories.RechargeRequestRepository,
	paymentRepo repositories.PaymentRepository,
	messaging MessagingService,
) *SettlementServiceImpl {
	return &SettlementServiceImpl{
		recharge:    recharge,
		ratePlans:   ratePlans,
		ledger:      ledger,
		companyRepo: companyRepo,
		requestRepo: requestRepo,
		paymentRepo: paymentRepo,
		messaging:   messaging,
	}
}

// Handle processes one callback to its terminal outcome. A non-nil error
// means the callback was rejected and nothing was credited; the gateway's own
// delivery retries are its business, not ours.
func (s *SettlementServiceImpl) Handle(ctx context.Context, envelope *mpesa.CallbackEnvelope) (*SettlementResult, error) {
	callback := &envelope.Body.STKCallback

	if !callback.Succeeded() {
		return s.handleFailedPayment(ctx, callback)
	}

	meta, err := callback.Metadata()
	if err != nil {
		slog.Warn("Rejected malformed callback", "error", err, "checkoutRequestId", callback.CheckoutRequestID)
		return nil, fmt.Errorf("malformed callback: %w", err)
	}

	// MATCH: most recent open request for the paying phone number wins.
	request, err := s.recharge.LookupOpen(ctx, meta.PhoneNumber)
	if err != nil {
		slog.Warn("Callback matched no pending request", "phone", meta.PhoneNumber, "checkoutRequestId", callback.CheckoutRequestID)
		return nil, err
	}

	// VALIDATE: the gateway's transaction time must fall inside the window
	// that started when the request was opened. Both bounds are inclusive.
	delta := meta.TransactionDate.Sub(request.CreatedAt)
	if delta < 0 || delta > settlementWindow {
		slog.Warn("Callback outside validity window", "delta", delta, "requestId", request.ID.Hex())
		return nil, ErrInvalidWindow
	}

	// APPLY, step one: claim the request. The completed=false condition makes
	// this the replay guard; a duplicate delivery loses here.
	if err := s.requestRepo.Complete(ctx, request.ID); err != nil {
		slog.Warn("Callback replay rejected", "error", err, "requestId", request.ID.Hex())
		return nil, err
	}

	result, err := s.applyPurpose(ctx, request, meta, callback)
	if err != nil {
		// The claim and the credit must land together. Reopen the request so
		// the payment stays reconcilable instead of silently half-applied.
		if reopenErr := s.requestRepo.Reopen(ctx, request.ID); reopenErr != nil {
			slog.Error("Failed to reopen request after settlement failure", "error", reopenErr, "requestId", request.ID.Hex())
		}
		return nil, err
	}

	slog.Info("Callback settled", "requestId", request.ID.Hex(), "purpose", request.Purpose, "unitsCredited", result.UnitsCredited)
	return result, nil
}

// applyPurpose selects the settlement action for the request's purpose. The
// switch is exhaustive over models.Purpose.
func (s *SettlementServiceImpl) applyPurpose(ctx context.Context, request *models.RechargeRequest, meta *mpesa.CallbackMetadata, callback *mpesa.STKCallback) (*SettlementResult, error) {
	switch request.Purpose {
	case models.PurposeSMSTopup:
		return s.applyTopup(ctx, request, meta, callback, models.ChannelSMS)
	case models.PurposeEmailTopup:
		return s.applyTopup(ctx, request, meta, callback, models.ChannelEmail)
	case models.PurposeBrandPayment:
		return s.applyBranding(ctx, request, meta, callback)
	default:
		return nil, fmt.Errorf("unknown transaction purpose %q", request.Purpose)
	}
}

// applyTopup rates the paid amount, credits the channel balance and notifies
// the payer of the new balance.
func (s *SettlementServiceImpl) applyTopup(ctx context.Context, request *models.RechargeRequest, meta *mpesa.CallbackMetadata, callback *mpesa.STKCallback, channel models.Channel) (*SettlementResult, error) {
	company, err := s.companyRepo.FindByID(ctx, request.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	units, err := s.ratePlans.UnitsFor(ctx, company, meta.Amount)
	if err != nil {
		return nil, err
	}

	newBalance, err := s.ledger.Credit(ctx, company.ID, channel, units)
	if err != nil {
		return nil, err
	}

	payment := s.buildPayment(request, meta, callback)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		slog.Error("Failed to record payment", "error", err, "requestId", request.ID.Hex())
	}

	label := "SMS"
	if channel == models.ChannelEmail {
		label = "email"
	}
	s.messaging.Notify(request.CustomerNumber,
		fmt.Sprintf("The recharge request was successful. Your new %s balance is %d.", label, newBalance))

	return &SettlementResult{
		Outcome:       OutcomeApplied,
		Request:       request,
		Payment:       payment,
		UnitsCredited: units,
		NewBalance:    newBalance,
	}, nil
}

// applyBranding activates the company's brand; no balance is credited.
func (s *SettlementServiceImpl) applyBranding(ctx context.Context, request *models.RechargeRequest, meta *mpesa.CallbackMetadata, callback *mpesa.STKCallback) (*SettlementResult, error) {
	if err := s.companyRepo.ActivateBrand(ctx, request.CompanyID); err != nil {
		return nil, fmt.Errorf("failed to activate brand: %w", err)
	}

	payment := s.buildPayment(request, meta, callback)
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		slog.Error("Failed to record payment", "error", err, "requestId", request.ID.Hex())
	}

	return &SettlementResult{
		Outcome: OutcomeApplied,
		Request: request,
		Payment: payment,
	}, nil
}

// handleFailedPayment notifies the payer and leaves the request open so the
// user can retry the top-up.
func (s *SettlementServiceImpl) handleFailedPayment(ctx context.Context, callback *mpesa.STKCallback) (*SettlementResult, error) {
	result := &SettlementResult{Outcome: OutcomePaymentFailed}

	request, err := s.requestRepo.FindByCheckoutID(ctx, callback.CheckoutRequestID)
	if err != nil {
		slog.Warn("Failed payment callback matched no request", "checkoutRequestId", callback.CheckoutRequestID, "resultCode", callback.ResultCode)
		return result, nil
	}
	result.Request = request

	slog.Info("Payment failed at gateway", "requestId", request.ID.Hex(), "resultCode", callback.ResultCode, "resultDesc", callback.ResultDesc)
	s.messaging.Notify(request.CustomerNumber,
		"Your payment could not be completed: "+callback.ResultDesc+". Please try again.")
	return result, nil
}

func (s *SettlementServiceImpl) buildPayment(request *models.RechargeRequest, meta *mpesa.CallbackMetadata, callback *mpesa.STKCallback) *models.Payment {
	return &models.Payment{
		CompanyID:          request.CompanyID,
		Amount:             meta.Amount.String(),
		PaymentAction:      request.Purpose,
		MpesaReceiptNumber: meta.MpesaReceiptNumber,
		PhoneNumber:        meta.PhoneNumber,
		TransactionDate:    meta.TransactionDate,
		RefNo:              uuid.NewString(),
		ResultCode:         callback.ResultCode,
		ResultDesc:         callback.ResultDesc,
	}
}
