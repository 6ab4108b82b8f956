package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pkowalczyk/matchforge/internal/api"
	"github.com/pkowalczyk/matchforge/internal/api/handlers"
	"github.com/pkowalczyk/matchforge/internal/services"
	"github.com/pkowalczyk/matchforge/internal/stats"
	"github.com/pkowalczyk/matchforge/pkg/config"
	"github.com/pkowalczyk/matchforge/pkg/database"
	"github.com/pkowalczyk/matchforge/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger()
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := stats.NewSeasonRegistry(stats.DefaultSeasons)
	if err != nil {
		log.Fatalf("Failed to build season registry: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis; the API works without it, just uncached.
	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err == nil {
			redisClient = client
			defer client.Close()
		} else {
			log.WithError(err).Warn("Redis unavailable, serving without cache")
		}
	}

	// Initialize services
	cache := services.NewCacheService(redisClient)
	builder := services.NewBuilderService(cfg, db, cache, registry, log)

	scheduler := services.NewSchedulerService(builder, log)
	if err := scheduler.Start(cfg.RebuildSchedule); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(db, cache)
	router.GET("/health", healthHandler.Health)

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, db, cache, builder)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
