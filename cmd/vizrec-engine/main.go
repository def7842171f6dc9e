package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geoinsight/vizrec/internal/analyzer"
	"github.com/geoinsight/vizrec/internal/api"
	"github.com/geoinsight/vizrec/internal/cache"
	"github.com/geoinsight/vizrec/internal/config"
	"github.com/geoinsight/vizrec/internal/engine"
	"github.com/geoinsight/vizrec/internal/feedback"
	"github.com/geoinsight/vizrec/internal/learning"
	"github.com/geoinsight/vizrec/internal/metrics"
	"github.com/geoinsight/vizrec/internal/services"
	"github.com/geoinsight/vizrec/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting vizrec-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	keywordPack, err := engine.LoadKeywordPack(cfg.Keywords.Path)
	if err != nil {
		logger.Error("failed to load keyword pack", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := feedback.NewLRUStore(cfg.Feedback.MaxQueries)
	if err != nil {
		logger.Error("failed to create feedback store", slog.Any("error", err))
		os.Exit(1)
	}
	index := feedback.NewIndex(store, logger,
		feedback.WithSimilarityThreshold(cfg.Feedback.SimilarityThreshold),
		feedback.WithLayerCountWindow(cfg.Feedback.LayerCountWindow),
	)

	learner := learning.NewLearner(learning.Config{
		LearningRate:        cfg.Learning.LearningRate,
		TimeDecayFactor:     cfg.Learning.TimeDecayFactor,
		ConfidenceThreshold: cfg.Learning.ConfidenceThreshold,
		EvidenceLimit:       cfg.Learning.EvidenceLimit,
	}, logger)

	pipeline := engine.NewPipeline(
		logger,
		analyzer.New(logger),
		engine.NewScorer(keywordPack),
		index,
		learner,
	)

	service := services.NewRecommenderService(logger, pipeline, index, learner, cacheProvider, cfg.Cache.RecommendationTTL)

	server, err := api.NewServer(cfg.Server, service, logger)
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("vizrec-engine stopped")
}
