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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rdd81/smart-budget-app/internal/app"
	"github.com/rdd81/smart-budget-app/internal/cache"
	"github.com/rdd81/smart-budget-app/internal/config"
	"github.com/rdd81/smart-budget-app/internal/database"
	"github.com/rdd81/smart-budget-app/internal/jobs"
	"github.com/rdd81/smart-budget-app/internal/jobs/gormstore"
	"github.com/rdd81/smart-budget-app/internal/jobs/inmemory"
	"github.com/rdd81/smart-budget-app/internal/logger"
	"github.com/rdd81/smart-budget-app/internal/metrics"
	"github.com/rdd81/smart-budget-app/internal/models"
	"github.com/rdd81/smart-budget-app/internal/validator"
)

// @title           Smart Budget API
// @version         1.0
// @description     Category suggestions, bulk re-categorization and suggestion feedback for personal finance transactions.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey OperatorKey
// @in header
// @name X-API-Key

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheusMetrics(registry)

	// Job registry
	var store jobs.Store
	switch appConfig.JobStore {
	case config.JobStoreDatabase:
		store = gormstore.NewStore(dbManager.DB())
	default:
		store = inmemory.NewStore(inmemory.WithMaxJobs(appConfig.JobMaxInMemory))
	}
	log.Infow("bulk job store selected", "store", appConfig.JobStore)

	personal := cache.New[string, models.Category](appConfig.PersonalizationCacheTTL, appConfig.PersonalizationCacheSize)

	// Initialize services
	svc := app.NewServices(dbManager.DB(), appConfig, store, recorder, personal)

	sweeper := jobs.NewSweeper(store, appConfig.JobRetention, appConfig.JobSweepSchedule, logger.Named("sweeper"), personal)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()

	router := app.NewRouter(app.RouterConfig{
		Config:   appConfig,
		Gatherer: registry,
		Ping:     dbManager.Ping,
	}, svc)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Smart Budget server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}

	// Let running bulk jobs and feedback writes finish before closing the pool.
	drained := make(chan struct{})
	go func() {
		svc.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		log.Info("Background work drained")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached with background work still running")
	}
	return nil
}
