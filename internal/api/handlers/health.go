package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pkowalczyk/matchforge/internal/services"
	"github.com/pkowalczyk/matchforge/pkg/database"
)

type HealthHandler struct {
	db    *database.DB
	cache *services.CacheService
}

func NewHealthHandler(db *database.DB, cache *services.CacheService) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health reports service liveness and the state of its dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "ok"

	if sqlDB, err := h.db.DB.DB(); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   "ok",
		"time":     time.Now().UTC(),
		"database": dbStatus,
		"cache":    h.cache.Enabled(),
	})
}
