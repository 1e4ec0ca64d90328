package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/services"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles recharge and settlement HTTP requests
type PaymentHandler struct {
	rechargeService   services.RechargeService
	settlementService services.SettlementService
	companyRepo       repositories.CompanyRepository
	paymentRepo       repositories.PaymentRepository
	feeRepo           repositories.BrandingFeeRepository
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	rechargeService services.RechargeService,
	settlementService services.SettlementService,
	companyRepo repositories.CompanyRepository,
	paymentRepo repositories.PaymentRepository,
	feeRepo repositories.BrandingFeeRepository,
) *PaymentHandler {
	return &PaymentHandler{
		rechargeService:   rechargeService,
		settlementService: settlementService,
		companyRepo:       companyRepo,
		paymentRepo:       paymentRepo,
		feeRepo:           feeRepo,
	}
}

type rechargeRequest struct {
	CustomerNumber  string `json:"customer_number" binding:"required"`
	Amount          int64  `json:"amount" binding:"required"`
	TransactionDesc string `json:"transaction_desc" binding:"required"`
}

// Recharge handles POST /recharge
func (h *PaymentHandler) Recharge(c *gin.Context) {
	var req rechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	purpose := models.Purpose(req.TransactionDesc)
	_, err := h.rechargeService.Open(c, company, req.CustomerNumber, req.Amount, purpose)
	if err != nil {
		switch {
		case errors.Is(err, mpesa.ErrGatewayUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable, please try again"})
		case errors.Is(err, services.ErrBrandingFeeNotSet),
			errors.Is(err, services.ErrWrongBrandingFee),
			errors.Is(err, services.ErrBrandingNotRequested):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Success, request accepted for processing"})
}

// MpesaCallback handles POST /payments/callback
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	var envelope mpesa.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed callback payload"})
		return
	}

	result, err := h.settlementService.Handle(c, &envelope)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoPendingRequest),
			errors.Is(err, services.ErrInvalidWindow),
			errors.Is(err, repositories.ErrAlreadySettled):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListPayments handles GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	payments, err := h.paymentRepo.FindByCompany(c, company.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get payments: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": payments})
}

// GetBrandingFee handles GET /branding-fee
func (h *PaymentHandler) GetBrandingFee(c *gin.Context) {
	fee, err := h.feeRepo.Get(c)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Branding fee is not set"})
		return
	}
	c.JSON(http.StatusOK, fee)
}

type brandingFeeRequest struct {
	Fee string `json:"fee" binding:"required"`
}

// SetBrandingFee handles PUT /branding-fee
func (h *PaymentHandler) SetBrandingFee(c *gin.Context) {
	var req brandingFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := decimal.NewFromString(req.Fee); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fee must be a decimal amount"})
		return
	}
	if err := h.feeRepo.Set(c, req.Fee); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set branding fee: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branding fee updated"})
}
