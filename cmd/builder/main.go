package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

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

	registry, err := stats.NewSeasonRegistry(stats.DefaultSeasons)
	if err != nil {
		log.Fatalf("Failed to build season registry: %v", err)
	}

	// The batch build degrades gracefully: no database means CSV-only
	// output, no Redis means no warm cache for the API.
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.WithError(err).Warn("Database unavailable, writing CSV only")
		db = nil
	} else {
		defer db.Close()
	}

	var redisClient *redis.Client
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err == nil {
			redisClient = client
			defer client.Close()
		} else {
			log.WithError(err).Warn("Redis unavailable, building without cache")
		}
	}

	cache := services.NewCacheService(redisClient)
	builder := services.NewBuilderService(cfg, db, cache, registry, log)

	result, err := builder.Run(context.Background())
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	logger.WithBuildContext(result.Run.ID, cfg.TeamID).Info("Build finished")

	report := result.Report
	fmt.Printf("run %s: %d rows x %d feature columns\n", result.Run.ID, report.Rows, report.FeatureColumns)
	fmt.Printf("dates %s .. %s\n", report.DateFrom.Format("2006-01-02"), report.DateTo.Format("2006-01-02"))
	fmt.Printf("imputed %d cells (%.2f%%), first-season rows %d, no-h2h rows %d\n",
		report.ImputedCells, report.ImputedPct, report.FirstSeasonRows, report.NoH2HRows)
	if cfg.OutputPath != "" {
		fmt.Printf("wrote %s\n", cfg.OutputPath)
	}
}
