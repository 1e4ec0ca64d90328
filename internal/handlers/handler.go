package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/middleware"
	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// callerCompany resolves the authenticated caller's company from the JWT
// claims stashed by the auth middleware. Writes the error response itself and
// returns nil when resolution fails.
func callerCompany(c *gin.Context, companyRepo repositories.CompanyRepository) *models.Company {
	hexID := c.GetString(middleware.ContextCompanyID)
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid company in token"})
		return nil
	}

	company, err := companyRepo.FindByID(c, id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Company not found"})
		return nil
	}
	return company
}

// respondServiceError maps a service failure onto an HTTP response. Billing
// rejections carry the remaining balance so users know how much is left.
func respondServiceError(c *gin.Context, err error) {
	var insufficient *repositories.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "You do not have enough balance to send these messages, please top up.",
			"balance": insufficient.Balance,
			"channel": insufficient.Channel,
		})
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
