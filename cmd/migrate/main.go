package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/pipeline"
	"github.com/pkowalczyk/matchforge/pkg/config"
	"github.com/pkowalczyk/matchforge/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db, cfg.TeamID); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.AutoMigrate(
		&models.PipelineRun{},
		&models.FeatureRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_feature_rows_run_date ON feature_rows(run_id, match_date)",
		"CREATE INDEX IF NOT EXISTS idx_feature_rows_opponent ON feature_rows(opponent_id)",
		"CREATE INDEX IF NOT EXISTS idx_pipeline_runs_status_started ON pipeline_runs(status, started_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	tables := []string{
		"feature_rows",
		"pipeline_runs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

// seedData inserts a completed demo run with one feature row, enough to
// exercise the API without building a real dataset first.
func seedData(db *database.DB, teamID int) error {
	runID := uuid.New().String()
	now := time.Now().UTC()

	report := pipeline.Report{
		RunID:          runID,
		GeneratedAt:    now,
		Rows:           1,
		FeatureColumns: len(pipeline.FeatureColumnNames()),
		DateFrom:       time.Date(2022, 8, 14, 0, 0, 0, 0, time.UTC),
		DateTo:         time.Date(2022, 8, 14, 0, 0, 0, 0, time.UTC),
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	run := &models.PipelineRun{
		ID:         runID,
		Status:     models.RunStatusCompleted,
		TeamID:     teamID,
		RowCount:   1,
		Report:     datatypes.JSON(reportJSON),
		StartedAt:  now,
		FinishedAt: &now,
	}
	if err := db.Create(run).Error; err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	ppm := 1.667
	row := &models.FeatureRow{
		RunID:      runID,
		MatchID:    1,
		MatchDate:  report.DateFrom,
		Round:      1,
		TeamID:     teamID,
		Team:       "Legia",
		OpponentID: 2,
		Opponent:   "Lech",
		Home:       true,
		PPML5:      &ppm,
		Flags:      models.ImputationFlags{},
		Players:    models.PlayerSlots{},
	}
	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to create feature row: %w", err)
	}

	logrus.Infof("Seeded demo run %s", runID)
	return nil
}
