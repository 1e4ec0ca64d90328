package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jambotech/jambosms-backend/api/routes"
	"github.com/jambotech/jambosms-backend/internal/config"
	"github.com/jambotech/jambosms-backend/internal/handlers"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	mongorepo "github.com/jambotech/jambosms-backend/internal/repositories/mongodb"
	"github.com/jambotech/jambosms-backend/internal/services"
	"github.com/jambotech/jambosms-backend/pkg/mongodb"
	"github.com/jambotech/jambosms-backend/pkg/mpesa"
	"github.com/jambotech/jambosms-backend/pkg/smsgateway"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var companyRepo repositories.CompanyRepository = mongorepo.NewCompanyRepository(db)
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var planRepo repositories.RechargePlanRepository = mongorepo.NewRechargePlanRepository(db)
	var requestRepo repositories.RechargeRequestRepository = mongorepo.NewRechargeRequestRepository(db)
	var paymentRepo repositories.PaymentRepository = mongorepo.NewPaymentRepository(db)
	var sentMessageRepo repositories.SentMessageRepository = mongorepo.NewSentMessageRepository(db)
	var feeRepo repositories.BrandingFeeRepository = mongorepo.NewBrandingFeeRepository(db)

	// Outbound gateways
	smsGateway := buildSMSGateway(cfg)
	emailGateway := smsgateway.NewMockEmailGateway()
	mpesaClient := mpesa.NewClient(mpesa.Config{
		AuthURL:           cfg.Mpesa.AuthURL,
		STKPushURL:        cfg.Mpesa.STKPushURL,
		ConsumerKey:       cfg.Mpesa.ConsumerKey,
		ConsumerSecret:    cfg.Mpesa.ConsumerSecret,
		BusinessShortCode: cfg.Mpesa.BusinessShortCode,
		PassKey:           cfg.Mpesa.PassKey,
		CallbackURL:       cfg.Mpesa.CallbackURL,
		MockAPI:           cfg.Mpesa.MockAPI,
	})

	dispatcher := services.NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize)
	defer dispatcher.Stop()

	// Services
	ledgerService := services.NewLedgerService(companyRepo)
	ratePlanService := services.NewRatePlanService(planRepo)
	messagingService := services.NewMessagingService(ledgerService, sentMessageRepo, smsGateway, emailGateway, dispatcher, cfg.SMS.DefaultSenderID)
	rechargeService := services.NewRechargeService(requestRepo, feeRepo, mpesaClient)
	settlementService := services.NewSettlementService(rechargeService, ratePlanService, ledgerService, companyRepo, requestRepo, paymentRepo, messagingService)
	authService := services.NewAuthService(userRepo, cfg)

	// Handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService),
		PaymentHandler:      handlers.NewPaymentHandler(rechargeService, settlementService, companyRepo, paymentRepo, feeRepo),
		RechargePlanHandler: handlers.NewRechargePlanHandler(ratePlanService, companyRepo),
		MessageHandler:      handlers.NewMessageHandler(messagingService, companyRepo),
		CompanyHandler:      handlers.NewCompanyHandler(companyRepo),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	slog.Info("Server exiting")
}

func buildSMSGateway(cfg *config.Config) smsgateway.Gateway {
	if cfg.SMS.MockGateway {
		return smsgateway.NewMockGateway("primary")
	}
	return smsgateway.NewAfricasTalkingGateway(cfg.SMS.BaseURL, cfg.SMS.Username, cfg.SMS.APIKey)
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
