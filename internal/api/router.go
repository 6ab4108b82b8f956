package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pkowalczyk/matchforge/internal/api/handlers"
	"github.com/pkowalczyk/matchforge/internal/services"
	"github.com/pkowalczyk/matchforge/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, db *database.DB, cache *services.CacheService, builder *services.BuilderService) {
	featureHandler := handlers.NewFeatureHandler(db, cache, builder)

	// Run endpoints
	group.GET("/runs", featureHandler.ListRuns)
	group.GET("/runs/:id", featureHandler.GetRun)
	group.GET("/runs/:id/report", featureHandler.GetReport)

	// Feature endpoints
	group.GET("/features", featureHandler.ListFeatures)
	group.GET("/features/:match_id", featureHandler.GetFeatureRow)

	// Build trigger
	group.POST("/rebuild", featureHandler.Rebuild)
}
