package middleware

import (
	"net/http"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SystemCapabilityMiddleware admits only viewers holding capability on the
// system context. It must run after ViewerMiddleware.
func SystemCapabilityMiddleware(contexts access.ContextRepository, capabilities access.CapabilityChecker, capability string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		log := logger.WithContext(logging.ChannelAuth, ctx)

		viewerID, ok := GetViewerID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		system, err := contexts.SystemContext(ctx)
		if err != nil || system == nil {
			log.Error("System context unavailable for capability check", "path", c.Request.URL.Path, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "system context unavailable"})
			c.Abort()
			return
		}

		allowed, err := capabilities.HasCapability(ctx, viewerID, capability, system.ID)
		if err != nil {
			log.Error("Capability check failed", "viewerId", viewerID, "capability", capability, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "capability check failed"})
			c.Abort()
			return
		}
		if !allowed {
			log.Warn("Viewer lacks system capability", "viewerId", viewerID, "capability", capability, "path", c.Request.URL.Path)
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
