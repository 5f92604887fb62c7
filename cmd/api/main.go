// backend-go/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/promolift/backend-go/internal/api"
	"github.com/andresuchdata/promolift/backend-go/internal/cache"
	"github.com/andresuchdata/promolift/backend-go/internal/config"
	"github.com/andresuchdata/promolift/backend-go/internal/forecast"
	"github.com/andresuchdata/promolift/backend-go/internal/jobs"
	"github.com/andresuchdata/promolift/backend-go/internal/predictor"
	"github.com/andresuchdata/promolift/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/promolift/backend-go/internal/service"
	"github.com/andresuchdata/promolift/backend-go/pkg/logger"
	"github.com/andresuchdata/promolift/backend-go/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.Server.Mode, cfg.Log.Level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize caches; a cache that cannot reach redis degrades to no caching
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache disabled")
		forecastCache = cache.NewNoopForecastCache()
	}
	trackingCache, err := cache.NewTrackingCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Tracking cache disabled")
		trackingCache = cache.NewNoopTrackingCache()
	}

	// Initialize repositories
	catalogRepo := postgres.NewCatalogRepository(db)
	promotionRepo := postgres.NewPromotionRepository(db)
	stockRepo := postgres.NewStockTrendRepository(db)

	// Initialize services
	predictorClient := predictor.NewClient(cfg.Prediction, appMetrics)
	fanout := forecast.NewFanout(predictorClient, cfg.Prediction.MaxConcurrency, appMetrics)
	forecastService := service.NewForecastService(catalogRepo, stockRepo, fanout, cfg.Forecast, forecastCache, appMetrics)
	campaignService := service.NewCampaignService(promotionRepo, cfg.Campaign, trackingCache, appMetrics)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler()
		flush := jobs.NewForecastCacheFlushJob(forecastService, appMetrics, 0)
		warmup := jobs.NewTrackingWarmupJob(campaignService, appMetrics, 0)
		if err := scheduler.AddJob(jobs.ForecastCacheFlushJobName, cfg.Jobs.CacheFlushCron, flush.Run); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to schedule cache flush")
		}
		if err := scheduler.AddJob(jobs.TrackingWarmupJobName, cfg.Jobs.TrackingWarmupCron, warmup.Run); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to schedule tracking warmup")
		}
		scheduler.Start()
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ForecastService: forecastService,
		CampaignService: campaignService,
	}, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        appMetrics,
		Gatherer:       registry,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
			logger.Log.Warn().Msg("Scheduled jobs still running at shutdown")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
