package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"aisim/internal/adgen"
	"aisim/internal/analytics"
	"aisim/internal/brand"
	"aisim/internal/config"
	"aisim/internal/delivery"
	"aisim/internal/email"
	"aisim/internal/genai"
	"aisim/internal/googleapi"
	"aisim/internal/leads"
	"aisim/internal/payment"
	"aisim/internal/prospect"
	"aisim/internal/server"
	"aisim/internal/storage"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	logger.Info("Starting AISim ad-automation backend...")
	if cfg.IsProduction() {
		logger.Info("Running in production mode")
	}

	db, err := storage.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	logger.Info("Connected to database")

	generator := genai.NewClient(cfg.GenAIAPIKey)
	google := googleapi.NewClient(cfg.GoogleAPIKey)
	brave := leads.NewBraveClient(cfg.BraveAPIKey)

	renderer, err := adgen.NewRenderer(brand.AISim, cfg.BaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse ad templates")
	}
	adService := adgen.NewService(generator, renderer, logger)

	analyticsService := analytics.NewService(db, logger)
	gateway := payment.NewGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, db, logger)
	leadService := leads.NewService(brave, google, leads.NewScraper(), generator, db, logger)

	dispatcher, err := delivery.NewDispatcher(cfg.BaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to parse embed template")
	}

	var outreach *prospect.Service
	if cfg.ResendAPIKey != "" {
		sender := email.NewClient(cfg.ResendAPIKey, cfg.EmailSender)
		outreach = prospect.NewService(generator, sender, db, logger)
		logger.Info("Outreach campaigns enabled")
	} else {
		logger.Info("RESEND_API_KEY not set, outreach campaigns disabled")
	}

	srv := server.New(logger, db, adService, analyticsService, gateway, google, leadService, dispatcher, outreach)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
