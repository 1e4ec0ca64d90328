package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/utils"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentInitiator is the slice of the Daraja client the recharge flow needs.
type PaymentInitiator interface {
	STKPush(ctx context.Context, phone, amount, transactionDesc string) (*mpesa.STKPushResponse, error)
}

// Compile-time check to ensure RechargeServiceImpl implements RechargeService
var _ RechargeService = (*RechargeServiceImpl)(nil)

// RechargeServiceImpl opens pending top-up requests.
type RechargeServiceImpl struct {
	requestRepo repositories.RechargeRequestRepository
	feeRepo     repositories.BrandingFeeRepository
	gateway     PaymentInitiator
}

// NewRechargeService creates a new RechargeServiceImpl
func NewRechargeService(
	requestRepo repositories.RechargeRequestRepository,
	feeRepo repositories.BrandingFeeRepository,
	gateway PaymentInitiator,
) *RechargeServiceImpl {
	return &RechargeServiceImpl{
		requestRepo: requestRepo,
		feeRepo:     feeRepo,
		gateway:     gateway,
	}
}

// Open initiates the STK push, then records the pending request keyed by the
// gateway's checkout id. The request stays open until the callback settles it.
func (s *RechargeServiceImpl) Open(ctx context.Context, company *models.Company, phone string, amount int64, purpose models.Purpose) (*models.RechargeRequest, error) {
	if err := utils.ValidateMpesaPhoneNumber(phone); err != nil {
		return nil, err
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown transaction purpose %q", purpose)
	}
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if purpose == models.PurposeBrandPayment {
		if err := s.validateBrandPayment(ctx, company, amount); err != nil {
			return nil, err
		}
	}

	response, err := s.gateway.STKPush(ctx, phone, strconv.FormatInt(amount, 10), string(purpose))
	if err != nil {
		slog.Error("Payment initiation failed", "error", err, "companyId", company.ID.Hex(), "phone", phone)
		return nil, err
	}

	request := &models.RechargeRequest{
		CompanyID:         company.ID,
		CustomerNumber:    phone,
		CheckoutRequestID: response.CheckoutRequestID,
		ResponseCode:      response.ResponseCode,
		Purpose:           purpose,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to record recharge request: %w", err)
	}

	slog.Info("Recharge request opened", "companyId", company.ID.Hex(), "checkoutRequestId", request.CheckoutRequestID, "purpose", purpose)
	return request, nil
}

// LookupOpen returns the most recent open request for the phone number.
func (s *RechargeServiceImpl) LookupOpen(ctx context.Context, phone string) (*models.RechargeRequest, error) {
	request, err := s.requestRepo.FindLatestOpenByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoPendingRequest
		}
		return nil, err
	}
	return request, nil
}

// validateBrandPayment checks the branding fee is configured, matches the
// amount, and that the company has actually requested branding.
func (s *RechargeServiceImpl) validateBrandPayment(ctx context.Context, company *models.Company, amount int64) error {
	fee, err := s.feeRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrBrandingFeeNotSet
		}
		return err
	}
	feeAmount, err := decimal.NewFromString(fee.Fee)
	if err != nil {
		return fmt.Errorf("configured branding fee is invalid: %w", err)
	}
	if !decimal.NewFromInt(amount).Equal(feeAmount) {
		return ErrWrongBrandingFee
	}
	if !company.IsBranded() {
		return ErrBrandingNotRequested
	}
	return nil
}
