// Package main is the entry point for the webhook and dashboard API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ArthurDS-tech/Umbler-sysystem/internal/attribution"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/businesshours"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/config"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/handler"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/middleware"
	natsclient "github.com/ArthurDS-tech/Umbler-sysystem/internal/nats"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/service"
	"github.com/ArthurDS-tech/Umbler-sysystem/internal/store"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/logger"
	"github.com/ArthurDS-tech/Umbler-sysystem/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var (
		log *logger.Logger
		err error
	)
	if os.Getenv("ENV") == "development" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting umbler webhook server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "umbler-webhook", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to PostgreSQL
	db, err := store.Open(ctx, store.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrateOnStartup {
		applied, err := db.Migrate(ctx)
		if err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
		log.Info("database schema up to date", zap.Strings("applied", applied))
	}

	// Connect to NATS when event publishing is enabled
	var (
		publisher service.EventPublisher
		natsConn  handler.ConnectionChecker
	)
	if cfg.NATSEnabled {
		natsClient, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		publisher = streamManager
		natsConn = natsClient
	}

	// Attribution inputs
	identities, err := attribution.LoadIdentityMap(cfg.AttendantsFile)
	if err != nil {
		log.Fatal("failed to load attendants", zap.String("file", cfg.AttendantsFile), zap.Error(err))
	}
	log.Info("attendants loaded", zap.Int("count", identities.Len()))

	loc, err := time.LoadLocation(cfg.BusinessTimezone)
	if err != nil {
		log.Fatal("invalid business timezone", zap.String("timezone", cfg.BusinessTimezone), zap.Error(err))
	}
	calendar := businesshours.NewCalendar(loc, cfg.BusinessStartHour, cfg.BusinessEndHour)
	calculator := businesshours.NewCalculator(calendar, cfg.BusinessHoursEnabled, cfg.MaxResponseTime)

	// Initialize services
	webhookSvc := service.NewWebhookService(db, publisher, identities, attribution.NewSiteDetector(cfg.SiteBrand), calculator, log)
	analyticsSvc := service.NewAnalyticsService(db, calendar, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, natsConn)
	webhookHandler := handler.NewWebhookHandler(webhookSvc, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Umbler webhook (no auth, rate limited per IP)
	r.Route("/api/webhook/umbler", func(r chi.Router) {
		r.Use(middleware.WebhookRateLimit(cfg.WebhookRateLimitRequests, cfg.WebhookRateLimitWindow))
		r.Post("/", webhookHandler.Receive)
		r.Get("/", webhookHandler.Info)
	})

	// Dashboard routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/metrics", analyticsHandler.Metrics)
		r.Get("/conversations/pending", analyticsHandler.Pending)
		r.Get("/agents/{agentName}/performance", analyticsHandler.AgentPerformance)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
