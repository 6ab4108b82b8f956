package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pkowalczyk/matchforge/internal/models"
	"github.com/pkowalczyk/matchforge/internal/pipeline"
	"github.com/pkowalczyk/matchforge/internal/services"
	"github.com/pkowalczyk/matchforge/pkg/database"
	"github.com/pkowalczyk/matchforge/pkg/utils"
)

type FeatureHandler struct {
	db      *database.DB
	cache   *services.CacheService
	builder *services.BuilderService
}

func NewFeatureHandler(db *database.DB, cache *services.CacheService, builder *services.BuilderService) *FeatureHandler {
	return &FeatureHandler{
		db:      db,
		cache:   cache,
		builder: builder,
	}
}

// ListRuns returns pipeline runs, newest first.
func (h *FeatureHandler) ListRuns(c *gin.Context) {
	var runs []models.PipelineRun
	if err := h.db.Order("started_at DESC").Limit(50).Find(&runs).Error; err != nil {
		utils.SendInternalError(c, "failed to list runs")
		return
	}
	utils.SendSuccess(c, runs)
}

// GetRun returns one pipeline run with its validation report.
func (h *FeatureHandler) GetRun(c *gin.Context) {
	var run models.PipelineRun
	if err := h.db.First(&run, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "run not found")
			return
		}
		utils.SendInternalError(c, "failed to load run")
		return
	}
	utils.SendSuccess(c, run)
}

// GetReport returns the validation report of a run, preferring the
// cached copy.
func (h *FeatureHandler) GetReport(c *gin.Context) {
	runID := c.Param("id")

	var report pipeline.Report
	if err := h.cache.Get(c.Request.Context(), services.ReportCacheKey(runID), &report); err == nil {
		utils.SendSuccess(c, report)
		return
	}

	var run models.PipelineRun
	if err := h.db.First(&run, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "run not found")
			return
		}
		utils.SendInternalError(c, "failed to load run")
		return
	}
	utils.SendSuccess(c, run.Report)
}

// ListFeatures returns feature rows of a run, optionally filtered by
// date range (?from=YYYY-MM-DD&to=YYYY-MM-DD). Unfiltered reads go
// through the cache; the builder warms it after every run.
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	runID, ok := h.resolveRunID(c)
	if !ok {
		return
	}

	unfiltered := c.Query("from") == "" && c.Query("to") == ""
	if unfiltered {
		var cached []models.FeatureRow
		if err := h.cache.Get(c.Request.Context(), services.FeatureRowsCacheKey(runID), &cached); err == nil {
			utils.SendSuccessWithMeta(c, cached, &utils.Meta{Total: int64(len(cached))})
			return
		}
	}

	query := h.db.Where("run_id = ?", runID).Order("match_date ASC")
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.SendValidationError(c, "invalid from date", err.Error())
			return
		}
		query = query.Where("match_date >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.SendValidationError(c, "invalid to date", err.Error())
			return
		}
		query = query.Where("match_date <= ?", t)
	}

	var rows []models.FeatureRow
	if err := query.Find(&rows).Error; err != nil {
		utils.SendInternalError(c, "failed to load feature rows")
		return
	}
	if unfiltered && len(rows) > 0 {
		h.cache.Set(c.Request.Context(), services.FeatureRowsCacheKey(runID), rows, 10*time.Minute)
	}
	utils.SendSuccessWithMeta(c, rows, &utils.Meta{Total: int64(len(rows))})
}

// GetFeatureRow returns one feature row by match id.
func (h *FeatureHandler) GetFeatureRow(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("match_id"))
	if err != nil {
		utils.SendValidationError(c, "invalid match id", err.Error())
		return
	}

	runID, ok := h.resolveRunID(c)
	if !ok {
		return
	}

	var row models.FeatureRow
	if err := h.db.First(&row, "run_id = ? AND match_id = ?", runID, matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "feature row not found")
			return
		}
		utils.SendInternalError(c, "failed to load feature row")
		return
	}
	utils.SendSuccess(c, row)
}

// Rebuild triggers a dataset build synchronously and returns the new
// run.
func (h *FeatureHandler) Rebuild(c *gin.Context) {
	result, err := h.builder.Run(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{
		"run":    result.Run,
		"report": result.Report,
	})
}

// resolveRunID picks the run to read: ?run= if given, otherwise the
// latest completed run.
func (h *FeatureHandler) resolveRunID(c *gin.Context) (string, bool) {
	if runID := c.Query("run"); runID != "" {
		return runID, true
	}

	var run models.PipelineRun
	err := h.db.Where("status = ?", models.RunStatusCompleted).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "no completed runs yet")
			return "", false
		}
		utils.SendInternalError(c, "failed to resolve latest run")
		return "", false
	}
	return run.ID, true
}
