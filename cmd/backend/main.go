// Package main provides the entry point for the LinkTrace tracking-link service.
//
//	@title			LinkTrace API
//	@version		1.0.0
//	@description	Tracking-link redirect and attribution analytics service.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/auth"
	"LinkTrace-Backend/internal/config"
	"LinkTrace-Backend/internal/database"
	httpHandler "LinkTrace-Backend/internal/handler/http"
	"LinkTrace-Backend/internal/repository/postgres"
	"LinkTrace-Backend/internal/service"
	"LinkTrace-Backend/pkg/logger"
	"LinkTrace-Backend/pkg/useragent"
	"context"
	"fmt"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "LinkTrace-Backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkTrace service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed platform traffic sources if enabled
	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	} else {
		log.Info("skipping database seeding (seed_data: false)")
	}

	// Initialize User-Agent parser
	regexesPath := "assets/regexes.yaml"
	if err := useragent.InitGlobalParser(regexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using fallback", zap.Error(err))
	}

	// Initialize storage and services
	storage := postgres.New(db, log)
	linkService := service.NewTrackingLinkService(storage, log)
	resolverService := service.NewResolverService(storage, log)
	attributionService := service.NewAttributionService(storage, log)
	refreshService := service.NewRefreshService(storage, log, service.RefreshKeyDailyStats, storage.RebuildDailyStats)
	sourceService := service.NewSourceService(storage, log)
	orgService := service.NewOrganizationService(storage, log)

	// Start deferred event recorder
	recorderConfig := analytics.DefaultConfig()
	recorderConfig.WorkerCount = cfg.Recorder.Workers
	recorderConfig.BufferSize = cfg.Recorder.BufferSize
	recorderConfig.RetryAttempts = cfg.Recorder.RetryAttempts
	recorderConfig.RetryBaseDelay = cfg.Recorder.RetryBaseDelay
	recorder := analytics.NewRecorder(storage, log, recorderConfig)
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start event recorder", zap.Error(err))
	}

	// Initialize JWT service for dashboard authentication
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte(cfg.Auth.JWTSecret),
		AccessTokenDuration: cfg.Auth.AccessTokenTTL,
		Issuer:              "LinkTrace-Backend",
	})
	passwordService := auth.NewPasswordService()
	credentials := &auth.AdminCredentials{
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}

	// Create HTTP server
	apiServer := httpHandler.NewServer(
		storage,
		linkService,
		resolverService,
		attributionService,
		refreshService,
		sourceService,
		orgService,
		recorder,
		jwtService,
		passwordService,
		credentials,
		log,
	)

	addr := fmt.Sprintf(":%d", cfg.HTTPServer.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", addr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkTrace service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Drain the event queue before closing the database
	if err := recorder.Stop(); err != nil {
		log.Error("failed to stop event recorder", zap.Error(err))
	}
}
