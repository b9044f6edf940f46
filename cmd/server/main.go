package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/match-predictor-service/internal/cache"
	"github.com/cypherlabdev/match-predictor-service/internal/config"
	"github.com/cypherlabdev/match-predictor-service/internal/dataset"
	httpHandler "github.com/cypherlabdev/match-predictor-service/internal/handler/http"
	"github.com/cypherlabdev/match-predictor-service/internal/messaging"
	"github.com/cypherlabdev/match-predictor-service/internal/metrics"
	"github.com/cypherlabdev/match-predictor-service/internal/service"
	"github.com/cypherlabdev/match-predictor-service/pkg/poisson"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting match-predictor-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Create prediction cache
	var predictionCache service.Cache = cache.NopCache{}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(
			cache.RedisCacheConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			},
			logger,
		)
		defer redisCache.Close()

		// Test Redis connection
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		predictionCache = redisCache
	}

	// Create publisher
	publisher, err := messaging.NewPublisher(cfg.Kafka, cfg.AMQP, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create publisher")
	}
	defer publisher.Close()

	// Create predictor and service layer
	predictor := poisson.NewPredictor(cfg.Model.ToModelParams(), logger)
	predictionService := service.NewPredictionService(predictor, predictionCache, publisher, m, logger)
	logger.Info().Int("max_goals", cfg.Model.MaxGoals).Msg("prediction service initialized")

	// Fit on the configured match history
	source, err := dataset.NewSource(ctx, cfg.Input, "", logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open match source")
	}
	model, err := predictionService.FitFromSource(ctx, source)
	source.Close()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to fit model")
	}
	logger.Info().
		Str("model_id", model.ID).
		Int("teams", len(model.Teams)).
		Msg("model ready")

	// Initialize HTTP handler
	predictionHandler := httpHandler.NewPredictionHandler(predictionService, logger)
	router := httpHandler.NewRouter(predictionHandler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "match-predictor").Logger()
}
