package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// SetLogLevelRequest changes the level of one logging channel.
type SetLogLevelRequest struct {
	Channel string `json:"channel" binding:"required"`
	Level   string `json:"level" binding:"required"`
}

// SystemHandlers serves health, status, log level and cache maintenance endpoints
type SystemHandlers struct {
	db          *database.DB
	graphCache  *stores.GraphStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	started     time.Time
}

// NewSystemHandlers creates system handlers with injected dependencies
func NewSystemHandlers(db *database.DB, graphCache *stores.GraphStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SystemHandlers {
	return &SystemHandlers{
		db:          db,
		graphCache:  graphCache,
		logger:      logger,
		perfTracker: perfTracker,
		started:     time.Now().UTC(),
	}
}

// Health handles GET /health
func (h *SystemHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status handles GET /api/v1/status - database, cache and performance summary
func (h *SystemHandlers) Status(c *gin.Context) {
	dbStatus := h.db.Status(c.Request.Context())

	status := http.StatusOK
	if healthy, _ := dbStatus["healthy"].(bool); !healthy {
		h.logger.System().Error("Database status check failed", "error", dbStatus["error"])
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"database":    dbStatus,
		"graphCache":  h.graphCache.Summary(),
		"performance": h.perfTracker.GetStats(),
		"alerts":      h.perfTracker.GetAlerts(),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
	})
}

// InvalidateGraphCache handles DELETE /api/v1/graphs/cache?pattern=
//
// Patterns are "*", a kind prefix such as "student:*", or an exact key.
func (h *SystemHandlers) InvalidateGraphCache(c *gin.Context) {
	pattern := c.DefaultQuery("pattern", "*")
	removed := h.graphCache.InvalidateByPattern(pattern)
	h.logger.WithContext(logging.ChannelCache, c.Request.Context()).Info("Graph cache invalidated", "pattern", pattern, "removed", removed)
	c.JSON(http.StatusOK, gin.H{"pattern": pattern, "removed": removed})
}

// GetLogLevels handles GET /api/v1/logs/levels
func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles PUT /api/v1/logs/levels
func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req SetLogLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	level, ok := logging.LookupLevel(req.Level)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log level", "level": req.Level})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, logging.ErrUnknownChannel) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.logger.WithContext(logging.ChannelSystem, c.Request.Context()).Info("Log level changed over HTTP", "channel", req.Channel, "level", level.String())
	c.JSON(http.StatusOK, gin.H{"channel": req.Channel, "level": level.String()})
}
