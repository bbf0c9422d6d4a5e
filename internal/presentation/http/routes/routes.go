// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/AtRiskMedia/ace-block/internal/application/container"
	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/assets"
	"github.com/AtRiskMedia/ace-block/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/ace-block/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/ace-block/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(config.CORSAllowOrigins))

	// Bundled block images.
	r.StaticFS(assets.PublicPath, http.FS(assets.FS()))

	// Initialize handlers
	blockHandlers := handlers.NewBlockHandlers(container.BlockService, container.BlockInstanceService, container.Logger, container.PerfTracker)
	preferenceHandlers := handlers.NewPreferenceHandlers(container.PreferenceService, container.Logger)
	systemHandlers := handlers.NewSystemHandlers(container.DB, container.GraphCache, container.Logger, container.PerfTracker)

	r.GET("/health", systemHandlers.Health)
	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	api := r.Group("/api/v1")
	{
		api.GET("/status", systemHandlers.Status)
		api.GET("/blocks/graphtypes", blockHandlers.GetGraphTypes)

		authed := api.Group("/")
		authed.Use(middleware.ViewerMiddleware(container.JWTSecret, container.Logger))
		{
			authed.POST("/blocks", blockHandlers.CreateBlock)
			authed.GET("/blocks/:id", blockHandlers.GetBlock)
			authed.GET("/blocks/:id/content", blockHandlers.GetBlockContent)
			authed.PUT("/blocks/:id/config", blockHandlers.ConfigureBlock)
			authed.GET("/contexts/:id/blocks", blockHandlers.ListContextBlocks)

			authed.POST("/preferences", preferenceHandlers.UpdatePreference)
			authed.GET("/preferences/:name", preferenceHandlers.GetPreference)

			// Site-wide maintenance needs the view capability on the system context.
			admin := authed.Group("/")
			admin.Use(middleware.SystemCapabilityMiddleware(container.Contexts, container.Capabilities, access.CapabilityView, container.Logger))
			{
				admin.DELETE("/graphs/cache", systemHandlers.InvalidateGraphCache)
				admin.GET("/logs/levels", systemHandlers.GetLogLevels)
				admin.PUT("/logs/levels", systemHandlers.SetLogLevel)
			}
		}
	}

	return r
}
