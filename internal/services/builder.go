package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/pkowalczyk/matchforge/internal/ingest"
	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/pipeline"
	"github.com/pkowalczyk/matchforge/internal/providers"
	"github.com/pkowalczyk/matchforge/internal/stats"
	"github.com/pkowalczyk/matchforge/pkg/config"
	"github.com/pkowalczyk/matchforge/pkg/database"
)

// BuilderService runs the whole dataset build: load, backfill,
// assemble, impute, validate, persist. The database and cache are both
// optional; a CSV-only build needs neither. When an archive base URL is
// configured the build fetches season files from it first and only
// falls back to the local match file.
type BuilderService struct {
	cfg      *config.Config
	db       *database.DB
	cache    *CacheService
	registry *stats.SeasonRegistry
	fetcher  *providers.SeasonFileClient
	logger   *logrus.Logger
}

func NewBuilderService(cfg *config.Config, db *database.DB, cache *CacheService, registry *stats.SeasonRegistry, logger *logrus.Logger) *BuilderService {
	var fetcher *providers.SeasonFileClient
	if cfg.FetcherBaseURL != "" {
		timeout, err := time.ParseDuration(cfg.FetcherTimeout)
		if err != nil || timeout <= 0 {
			timeout = 15 * time.Second
		}
		fetcher = providers.NewSeasonFileClient(cfg.FetcherBaseURL, cfg.FetcherRateLimit, timeout, logger)
	}

	return &BuilderService{
		cfg:      cfg,
		db:       db,
		cache:    cache,
		registry: registry,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// BuildResult is what one pipeline run produced.
type BuildResult struct {
	Run    models.PipelineRun
	Rows   []models.FeatureRow
	Report pipeline.Report
}

// Run executes one build end to end. Failures after the run record was
// created are written back to it, so half-finished runs are visible
// rather than silently gone.
func (s *BuilderService) Run(ctx context.Context) (*BuildResult, error) {
	runID := uuid.New().String()
	run := models.PipelineRun{
		ID:        runID,
		Status:    models.RunStatusRunning,
		TeamID:    s.cfg.TeamID,
		StartedAt: time.Now().UTC(),
	}
	if err := s.createRun(&run); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"component": "builder",
		"run_id":    runID,
		"team_id":   s.cfg.TeamID,
	})
	log.Info("Starting dataset build")

	result, err := s.build(ctx, runID)
	if err != nil {
		s.failRun(&run, err)
		return nil, err
	}

	run.Status = models.RunStatusCompleted
	run.RowCount = len(result.Rows)
	now := time.Now().UTC()
	run.FinishedAt = &now
	if data, jerr := json.Marshal(result.Report); jerr == nil {
		run.Report = datatypes.JSON(data)
	}
	if err := s.saveRun(&run); err != nil {
		return nil, err
	}
	result.Run = run

	s.cacheResult(ctx, result)
	log.WithFields(logrus.Fields{
		"rows":        len(result.Rows),
		"imputed_pct": result.Report.ImputedPct,
		"missing_pct": result.Report.MissingPct,
	}).Info("Dataset build complete")
	return result, nil
}

func (s *BuilderService) build(ctx context.Context, runID string) (*BuildResult, error) {
	loader := ingest.NewLoader(s.logger)

	matches, err := s.loadMatches(ctx, loader)
	if err != nil {
		return nil, fmt.Errorf("load matches: %w", err)
	}

	var players map[int][]models.PlayerSlot
	if s.cfg.AppearancesPath != "" {
		if players, err = loader.LoadAppearances(s.cfg.AppearancesPath); err != nil {
			return nil, fmt.Errorf("load appearances: %w", err)
		}
	}

	matches, _ = ingest.BackfillFairOdds(matches, s.logger)
	matches = ingest.BackfillPPM(matches, s.registry, s.logger)

	repo := stats.NewMatchRepository(matches)
	assembler := pipeline.NewAssembler(repo, s.registry, s.cfg.TeamID, s.cfg.RollingWindow, s.logger)
	rows, err := assembler.BuildAll(runID, players)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	pipeline.NewImputer(s.logger).Run(rows)

	report := pipeline.Validate(runID, rows)
	if !report.Complete() {
		return nil, fmt.Errorf("dataset incomplete after imputation: %d missing cells", report.MissingCells)
	}

	if s.cfg.OutputPath != "" {
		if err := pipeline.WriteCSVFile(s.cfg.OutputPath, rows); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	}

	if s.db != nil {
		if err := s.db.CreateInBatches(rows, 200).Error; err != nil {
			return nil, fmt.Errorf("persist rows: %w", err)
		}
	}

	return &BuildResult{Rows: rows, Report: report}, nil
}

// loadMatches prefers the configured season archive and falls back to
// the local match file when the archive (or its breaker) fails. With no
// archive configured the local file is the only source.
func (s *BuilderService) loadMatches(ctx context.Context, loader *ingest.Loader) ([]models.Match, error) {
	if s.fetcher == nil {
		return loader.LoadMatches(s.cfg.MatchesPath)
	}

	seasons := s.registry.Seasons()
	names := make([]string, 0, len(seasons))
	for _, season := range seasons {
		names = append(names, season.Name)
	}

	matches, err := s.fetcher.FetchSeasons(ctx, names)
	if err == nil {
		return matches, nil
	}
	if s.cfg.MatchesPath == "" {
		return nil, fmt.Errorf("fetch seasons: %w", err)
	}
	s.logger.WithError(err).Warn("Season archive unavailable, falling back to local match file")
	return loader.LoadMatches(s.cfg.MatchesPath)
}

func (s *BuilderService) createRun(run *models.PipelineRun) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Create(run).Error; err != nil {
		return fmt.Errorf("create pipeline run: %w", err)
	}
	return nil
}

func (s *BuilderService) saveRun(run *models.PipelineRun) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Save(run).Error; err != nil {
		return fmt.Errorf("save pipeline run: %w", err)
	}
	return nil
}

func (s *BuilderService) failRun(run *models.PipelineRun, cause error) {
	run.Status = models.RunStatusFailed
	run.Error = cause.Error()
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.saveRun(run); err != nil {
		s.logger.WithError(err).Error("Failed to record run failure")
	}
}

func (s *BuilderService) cacheResult(ctx context.Context, result *BuildResult) {
	if !s.cache.Enabled() {
		return
	}
	ttl := time.Duration(s.cfg.CacheExpiration) * time.Second
	if err := s.cache.Set(ctx, ReportCacheKey(result.Run.ID), result.Report, ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache report")
	}
	if err := s.cache.Set(ctx, FeatureRowsCacheKey(result.Run.ID), result.Rows, ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache feature rows")
	}
	if err := s.cache.Set(ctx, LatestRunCacheKey(s.cfg.TeamID), result.Run.ID, ttl); err != nil {
		s.logger.WithError(err).Warn("Failed to cache latest run id")
	}
}
