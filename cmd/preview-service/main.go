package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/config"
	"github.com/edgecomet/htmlcut/internal/common/logger"
	"github.com/edgecomet/htmlcut/internal/common/metricsserver"
	"github.com/edgecomet/htmlcut/internal/common/redis"
	"github.com/edgecomet/htmlcut/internal/preview"
	"github.com/edgecomet/htmlcut/internal/preview/metrics"
)

func main() {
	configPath := flag.String("c", "configs/preview-service.yaml", "path to preview service configuration file")
	flag.Parse()

	initialLogger, err := logger.NewDefaultLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	initialLogger.Info("Starting Preview Service", zap.String("config_path", *configPath))

	cfg, err := config.LoadServiceConfig(*configPath, initialLogger.Logger)
	if err != nil {
		initialLogger.Fatal("Failed to load config", zap.Error(err))
	}

	dynamicLogger, err := logger.NewLoggerWithStartupOverride(cfg.Log)
	if err != nil {
		initialLogger.Fatal("Failed to create configured logger", zap.Error(err))
	}
	defer dynamicLogger.Sync()
	zapLogger := dynamicLogger.Logger

	promMetrics := metrics.NewPrometheusMetrics(cfg.Metrics.Namespace, zapLogger)

	var cache *preview.ResultCache
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		cache = preview.NewResultCache(redisClient, cfg.Cache, promMetrics, zapLogger)
		zapLogger.Info("Result cache enabled",
			zap.Duration("ttl", cfg.Cache.TTL.ToDuration()),
			zap.String("compression", cfg.Cache.Compression))
	}

	svc, err := preview.NewService(cfg, cache, promMetrics, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create preview service", zap.Error(err))
	}

	metricsServer, err := metricsserver.Start(cfg.Metrics, promMetrics, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to start metrics server", zap.Error(err))
	}

	httpServer := &fasthttp.Server{
		Handler:                      svc.Handler(),
		Name:                         "htmlcut-preview",
		ReadTimeout:                  cfg.Server.Timeout.ToDuration(),
		WriteTimeout:                 cfg.Server.Timeout.ToDuration(),
		IdleTimeout:                  60 * time.Second,
		MaxRequestBodySize:           cfg.Server.MaxBodySize,
		DisablePreParseMultipartForm: true,
		NoDefaultServerHeader:        true,
		NoDefaultDate:                true,
	}

	go func() {
		zapLogger.Info("HTTP API server starting", zap.String("addr", cfg.Server.Listen))
		if err := httpServer.ListenAndServe(cfg.Server.Listen); err != nil {
			zapLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	dynamicLogger.SwitchToConfiguredLevel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	dynamicLogger.EnsureInfoLevelForShutdown()
	zapLogger.Info("Shutting down Preview Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.ToDuration())
	defer cancel()

	if err := httpServer.ShutdownWithContext(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown metrics server gracefully", zap.Error(err))
		}
	}

	zapLogger.Info("Preview Service stopped")
}
