package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/repositories"
)

// CompanyHandler handles company HTTP requests
type CompanyHandler struct {
	companyRepo repositories.CompanyRepository
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyRepo repositories.CompanyRepository) *CompanyHandler {
	return &CompanyHandler{companyRepo: companyRepo}
}

// GetOwnCompany handles GET /companies/me, reporting balances and branding
func (h *CompanyHandler) GetOwnCompany(c *gin.Context) {
	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}
	c.JSON(http.StatusOK, company)
}
