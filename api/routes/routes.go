package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jambotech/jambosms-backend/internal/config"
	"github.com/jambotech/jambosms-backend/internal/handlers"
	"github.com/jambotech/jambosms-backend/internal/middleware"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler         *handlers.AuthHandler
	PaymentHandler      *handlers.PaymentHandler
	RechargePlanHandler *handlers.RechargePlanHandler
	MessageHandler      *handlers.MessageHandler
	CompanyHandler      *handlers.CompanyHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)

		// The payment gateway calls back here; it carries no bearer token.
		public.POST("/payments/callback", deps.PaymentHandler.MpesaCallback)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		protected.GET("/companies/me", deps.CompanyHandler.GetOwnCompany)

		protected.POST("/recharge", deps.PaymentHandler.Recharge)
		protected.GET("/payments", deps.PaymentHandler.ListPayments)

		plans := protected.Group("/recharge-plans")
		{
			plans.GET("", deps.RechargePlanHandler.ListGlobalPlans)
			plans.POST("", middleware.AdminRequired(), deps.RechargePlanHandler.CreateGlobalPlan)
		}

		resellerPlans := protected.Group("/reseller-recharge-plans")
		{
			resellerPlans.GET("", deps.RechargePlanHandler.ListResellerPlans)
			resellerPlans.POST("", deps.RechargePlanHandler.CreateResellerPlan)
		}

		protected.GET("/branding-fee", deps.PaymentHandler.GetBrandingFee)
		protected.PUT("/branding-fee", middleware.AdminRequired(), deps.PaymentHandler.SetBrandingFee)

		smsRoutes := protected.Group("/sms")
		{
			smsRoutes.POST("/send", deps.MessageHandler.SendSMS)
			smsRoutes.POST("/send-personalized", deps.MessageHandler.SendPersonalizedSMS)
		}

		protected.POST("/email/send", deps.MessageHandler.SendEmail)
	}

	return router
}
