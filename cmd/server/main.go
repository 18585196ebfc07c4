package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/statelink/statelink-backend/config"
	"github.com/statelink/statelink-backend/internal/app/controller"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/app/wizard"
	"github.com/statelink/statelink-backend/internal/db"
	"github.com/statelink/statelink-backend/internal/middleware"
	"github.com/statelink/statelink-backend/internal/router"
	"github.com/statelink/statelink-backend/internal/scheduler"
	"github.com/statelink/statelink-backend/internal/storage"
	"github.com/statelink/statelink-backend/internal/websocket"
	"github.com/statelink/statelink-backend/pkg/logger"
	"github.com/statelink/statelink-backend/pkg/payment/cardgateway"
	"github.com/statelink/statelink-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting StateLink Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Wizard sessions and token revocation live in Redis. Development may run
	// without it; sessions are then process-local and logout is not enforced.
	var store wizard.Store
	var isRevoked middleware.RevocationCheck
	if err := redis.Init(&cfg.Redis); err != nil {
		if cfg.Server.Environment != "development" {
			logger.Fatal("Redis is required outside development", err)
		}
		logger.Warn("Redis unavailable, using in-memory wizard sessions", map[string]interface{}{
			"error": err.Error(),
		})
		store = wizard.NewMemoryStore(cfg.Session.TTL)
	} else {
		defer redis.Close()
		store = wizard.NewRedisStore(redis.GetClient(), cfg.Session.TTL)
		isRevoked = redis.IsTokenBlacklisted
	}

	gateway, err := cardgateway.NewClient(cardgateway.Config{
		APIKey:     cfg.Payment.CardGateway.APIKey,
		MerchantID: cfg.Payment.CardGateway.MerchantID,
		BaseURL:    cfg.Payment.CardGateway.BaseURL,
		Currency:   cfg.Payment.CardGateway.Currency,
		Timeout:    cfg.Payment.CardGateway.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to configure card gateway", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Initialize repositories
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	requestRepo := repository.NewComplianceRequestRepository(db.GetDB())
	adminRepo := repository.NewAdminUserRepository(db.GetDB())

	// Initialize services
	businessService := service.NewBusinessService(businessRepo)
	checkoutService := service.NewCheckoutService(db.GetDB(), businessRepo, requestRepo, store, gateway, hub)
	adminService := service.NewAdminService(
		adminRepo,
		requestRepo,
		redis.BlacklistToken,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	var exportService service.ExportService
	if cfg.S3.Bucket != "" {
		objects := storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
		exportService = service.NewExportService(requestRepo, objects, cfg.S3.ExportPrefix)
	} else {
		logger.Warn("AWS_S3_BUCKET not set, paid-order exports disabled")
	}

	if err := adminService.EnsureDefaultAdmin(cfg.Admin.DefaultUsername, cfg.Admin.DefaultEmail, cfg.Admin.DefaultPassword); err != nil {
		logger.Fatal("Failed to create default admin", err)
	}

	if cfg.Scheduler.Enabled {
		jobs := scheduler.NewBusinessScheduler(businessService, exportService, cfg.Scheduler.NewBusinessDays)
		if err := jobs.Start(cfg.Scheduler.FlagRefreshSpec, cfg.Scheduler.NightlyExportSpec); err != nil {
			logger.Fatal("Failed to start scheduler", err)
		}
		defer jobs.Stop()
	}

	// Initialize controllers
	businessController := controller.NewBusinessController(businessService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	adminController := controller.NewAdminController(adminService, businessService, exportService, hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, isRevoked)
	sessionMiddleware := middleware.NewSessionMiddleware(cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure)

	// Setup router
	r := router.NewRouter(
		businessController,
		checkoutController,
		adminController,
		authMiddleware,
		sessionMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	cancel()

	logger.Info("Server stopped successfully")
}
