package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/services"
)

// RechargePlanHandler handles rate-table administration HTTP requests
type RechargePlanHandler struct {
	ratePlanService services.RatePlanService
	companyRepo     repositories.CompanyRepository
}

// NewRechargePlanHandler creates a new RechargePlanHandler
func NewRechargePlanHandler(ratePlanService services.RatePlanService, companyRepo repositories.CompanyRepository) *RechargePlanHandler {
	return &RechargePlanHandler{
		ratePlanService: ratePlanService,
		companyRepo:     companyRepo,
	}
}

type rechargePlanRequest struct {
	Name       string `json:"name" binding:"required"`
	PriceLimit int64  `json:"price_limit" binding:"required"`
	Rate       string `json:"rate" binding:"required"`
}

// ListGlobalPlans handles GET /recharge-plans
func (h *RechargePlanHandler) ListGlobalPlans(c *gin.Context) {
	plans, err := h.ratePlanService.ListGlobalPlans(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recharge plans: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreateGlobalPlan handles POST /recharge-plans
func (h *RechargePlanHandler) CreateGlobalPlan(c *gin.Context) {
	var req rechargePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := &models.RechargePlan{Name: req.Name, PriceLimit: req.PriceLimit, Rate: req.Rate}
	if err := h.ratePlanService.CreateGlobalPlan(c, plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ListResellerPlans handles GET /reseller-recharge-plans
func (h *RechargePlanHandler) ListResellerPlans(c *gin.Context) {
	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	plans, err := h.ratePlanService.ListResellerPlans(c, company.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recharge plans: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}

// CreateResellerPlan handles POST /reseller-recharge-plans
func (h *RechargePlanHandler) CreateResellerPlan(c *gin.Context) {
	var req rechargePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}
	if !company.IsReseller {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only reseller companies can define their own recharge plans"})
		return
	}

	plan := &models.RechargePlan{Name: req.Name, PriceLimit: req.PriceLimit, Rate: req.Rate}
	if err := h.ratePlanService.CreateResellerPlan(c, company.ID, plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}
