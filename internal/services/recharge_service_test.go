package services

import (
	"context"
	"testing"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCompany() *models.Company {
	return &models.Company{ID: primitive.NewObjectID(), Name: "Acme"}
}

func TestOpenRecordsPendingRequest(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	gateway := &fakeInitiator{}
	service := NewRechargeService(requestRepo, &fakeFeeRepo{}, gateway)
	company := testCompany()

	request, err := service.Open(context.Background(), company, "254708374149", 500, models.PurposeSMSTopup)
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, company.ID, request.CompanyID)
	assert.Equal(t, "254708374149", request.CustomerNumber)
	assert.Equal(t, "ws_CO_TEST_0001", request.CheckoutRequestID)
	assert.Equal(t, models.PurposeSMSTopup, request.Purpose)
	assert.False(t, request.Completed)

	stored, err := requestRepo.FindByCheckoutID(context.Background(), "ws_CO_TEST_0001")
	require.NoError(t, err)
	assert.Equal(t, request.ID, stored.ID)
}

func TestOpenRejectsBadInput(t *testing.T) {
	service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{}, &fakeInitiator{})
	company := testCompany()
	ctx := context.Background()

	_, err := service.Open(ctx, company, "0708374149", 500, models.PurposeSMSTopup)
	assert.Error(t, err)

	_, err = service.Open(ctx, company, "254708374149", 500, models.Purpose("airtime"))
	assert.Error(t, err)

	_, err = service.Open(ctx, company, "254708374149", 0, models.PurposeSMSTopup)
	assert.Error(t, err)

	_, err = service.Open(ctx, company, "254708374149", -10, models.PurposeSMSTopup)
	assert.Error(t, err)
}

func TestOpenPropagatesGatewayFailure(t *testing.T) {
	requestRepo := &fakeRequestRepo{}
	gateway := &fakeInitiator{err: mpesa.ErrGatewayUnavailable}
	service := NewRechargeService(requestRepo, &fakeFeeRepo{}, gateway)

	_, err := service.Open(context.Background(), testCompany(), "254708374149", 500, models.PurposeSMSTopup)
	assert.ErrorIs(t, err, mpesa.ErrGatewayUnavailable)
	assert.Empty(t, requestRepo.requests)
}

func TestOpenBrandPaymentValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("fee not set", func(t *testing.T) {
		service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{}, &fakeInitiator{})
		company := testCompany()
		company.Brand = &models.Brand{Name: "ACME"}

		_, err := service.Open(ctx, company, "254708374149", 2000, models.PurposeBrandPayment)
		assert.ErrorIs(t, err, ErrBrandingFeeNotSet)
	})

	t.Run("wrong amount", func(t *testing.T) {
		service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{fee: "2000", set: true}, &fakeInitiator{})
		company := testCompany()
		company.Brand = &models.Brand{Name: "ACME"}

		_, err := service.Open(ctx, company, "254708374149", 1500, models.PurposeBrandPayment)
		assert.ErrorIs(t, err, ErrWrongBrandingFee)
	})

	t.Run("branding never requested", func(t *testing.T) {
		service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{fee: "2000", set: true}, &fakeInitiator{})

		_, err := service.Open(ctx, testCompany(), "254708374149", 2000, models.PurposeBrandPayment)
		assert.ErrorIs(t, err, ErrBrandingNotRequested)
	})

	t.Run("valid brand payment", func(t *testing.T) {
		service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{fee: "2000", set: true}, &fakeInitiator{})
		company := testCompany()
		company.Brand = &models.Brand{Name: "ACME", IsApproved: true}

		_, err := service.Open(ctx, company, "254708374149", 2000, models.PurposeBrandPayment)
		assert.NoError(t, err)
	})
}

func TestLookupOpenMapsNoDocuments(t *testing.T) {
	service := NewRechargeService(&fakeRequestRepo{}, &fakeFeeRepo{}, &fakeInitiator{})

	_, err := service.LookupOpen(context.Background(), "254708374149")
	assert.ErrorIs(t, err, ErrNoPendingRequest)
}
