package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"churn-prediction-service/internal/adapters/primary/http/handlers"
	"churn-prediction-service/internal/adapters/primary/http/middleware"
	"churn-prediction-service/internal/adapters/secondary/filesystem"
	"churn-prediction-service/internal/adapters/secondary/prometheus"
	"churn-prediction-service/internal/config"
	"churn-prediction-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	metrics := prometheus.NewRecorder()
	artifactReader := filesystem.NewArtifactReader(cfg.Paths.ModelPath, cfg.Paths.FeaturesPath, cfg.Load.ArtifactMaxBytes)
	predictionReader := filesystem.NewPredictionReader(
		cfg.Paths.PredictionsPath,
		cfg.Predictions.KeyColumn,
		cfg.Predictions.ProbabilityColumn,
	)

	// Core Services (Application Layer)
	artifactStore := services.NewArtifactStore(artifactReader, metrics, cfg.Load.Timeout)
	predictionCache := services.NewPredictionCache(predictionReader, predictionReader, metrics, services.PredictionCacheOptions{
		Timeout:     cfg.Load.Timeout,
		StrictKeys:  cfg.Predictions.StrictKeys,
		LabelColumn: cfg.Predictions.LabelColumn,
	})

	// Load everything before accepting traffic; there is no degraded mode.
	log.WithFields(log.Fields{
		"model_path":       cfg.Paths.ModelPath,
		"features_path":    cfg.Paths.FeaturesPath,
		"predictions_path": cfg.Paths.PredictionsPath,
	}).Info("loading model artifact and predictions")
	if err := services.Warmup(context.Background(), artifactStore, predictionCache); err != nil {
		log.Fatalf("startup load: %v", err)
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(artifactStore, predictionCache)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/churn")
	h.RegisterRoutes(api)
	h.RegisterHealth(router)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Start server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
