package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/jambotech/jambosms-backend/internal/services"
	"github.com/jambotech/jambosms-backend/internal/sms"
)

// MessageHandler handles outbound send HTTP requests
type MessageHandler struct {
	messagingService services.MessagingService
	companyRepo      repositories.CompanyRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messagingService services.MessagingService, companyRepo repositories.CompanyRepository) *MessageHandler {
	return &MessageHandler{
		messagingService: messagingService,
		companyRepo:      companyRepo,
	}
}

type sendSMSRequest struct {
	Message    string   `json:"message" binding:"required"`
	Recipients []string `json:"recipients" binding:"required,min=1"`
}

// SendSMS handles POST /sms/send
func (h *MessageHandler) SendSMS(c *gin.Context) {
	var req sendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	cost, err := h.messagingService.SendBulk(c, company, req.Message, req.Recipients)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Success, request accepted for processing",
		"units":   cost,
	})
}

type sendPersonalizedRequest struct {
	Message  string        `json:"message" binding:"required"`
	Greeting string        `json:"greeting_text" binding:"required"`
	Contacts []sms.Contact `json:"contacts" binding:"required,min=1"`
}

// SendPersonalizedSMS handles POST /sms/send-personalized
func (h *MessageHandler) SendPersonalizedSMS(c *gin.Context) {
	var req sendPersonalizedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	cost, err := h.messagingService.SendPersonalized(c, company, req.Message, req.Greeting, req.Contacts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Success, request accepted for processing",
		"units":   cost,
	})
}

type sendEmailRequest struct {
	Subject    string   `json:"subject" binding:"required"`
	Body       string   `json:"body" binding:"required"`
	Recipients []string `json:"recipients" binding:"required,min=1"`
}

// SendEmail handles POST /email/send
func (h *MessageHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	company := callerCompany(c, h.companyRepo)
	if company == nil {
		return
	}

	cost, err := h.messagingService.SendEmail(c, company, req.Subject, req.Body, req.Recipients)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Success, request accepted for processing",
		"units":   cost,
	})
}
