package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"legal-reader/internal/ai"
	"legal-reader/internal/config"
	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/related"
	"legal-reader/internal/scheduler"
	"legal-reader/internal/search"
	"legal-reader/internal/telemetry"
	"legal-reader/middleware"
	"legal-reader/routes"
)

const serviceName = "legal-reader"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer(serviceName, cfg.OTLPEndpoint, cfg.TraceSampleRatio)
	if err != nil {
		log.Fatal("Failed to initialize tracer:", err)
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
		metrics = nil
	}

	lib, err := content.LoadDir(cfg.ContentDir)
	if err != nil {
		log.Fatal("Failed to load content:", err)
	}

	// The Gemini client is built on the first related-sections lookup
	provider := ai.NewGeminiProvider(cfg, metrics)
	defer provider.Close()

	queue := related.NewQueue(provider, related.QueueOptions{
		Cooldown: cfg.RelatedCooldown,
		Timeout:  cfg.RelatedTimeout,
		Metrics:  metrics,
	})
	queue.Start()

	cacheOpts := []related.CacheOption{related.WithMetrics(metrics)}
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, related sections cached in memory only", "error", err)
	} else if rdb != nil {
		defer rdb.Close()
		cacheOpts = append(cacheOpts, related.WithStore(related.NewRedisStore(rdb, cfg.RelatedCacheTTL)))
		logger.Info("Related sections store enabled", "ttl", cfg.RelatedCacheTTL.String())
	}
	relatedSvc := related.NewService(queue, lib, cacheOpts...)

	sched := scheduler.NewScheduler()
	if err := sched.ScheduleInterval("related-stats", cfg.StatsInterval, func() error {
		stats := relatedSvc.Stats()
		logger.Info("Related sections stats",
			"queue_depth", stats.QueueDepth,
			"queue_state", stats.QueueState,
			"cache_sizes", stats.CacheSizes,
		)
		return nil
	}); err != nil {
		logger.Warn("Failed to schedule stats job", "error", err)
	}
	sched.Start()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.TracingMiddleware(serviceName))
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))

	// Setup routes
	routes.SetupHealthRoutes(router, relatedSvc)
	routes.SetupDocumentRoutes(router, lib, relatedSvc, search.NewHighlighter(), cfg.RelatedTimeout)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	sched.Stop()
	queue.Stop()

	logger.Info("Server exited")
}
