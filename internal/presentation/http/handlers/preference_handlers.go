package handlers

import (
	"errors"
	"net/http"

	"github.com/AtRiskMedia/ace-block/internal/application/services"
	"github.com/AtRiskMedia/ace-block/internal/domain/user"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// UpdatePreferenceRequest is sent by the block's toggle script.
type UpdatePreferenceRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// PreferenceHandlers contains the async preference endpoints
type PreferenceHandlers struct {
	preferenceService *services.PreferenceService
	logger            *logging.ChanneledLogger
}

// NewPreferenceHandlers creates preference handlers with injected dependencies
func NewPreferenceHandlers(preferenceService *services.PreferenceService, logger *logging.ChanneledLogger) *PreferenceHandlers {
	return &PreferenceHandlers{
		preferenceService: preferenceService,
		logger:            logger,
	}
}

// UpdatePreference handles POST /api/v1/preferences
func (h *PreferenceHandlers) UpdatePreference(c *gin.Context) {
	viewerID, ok := middleware.GetViewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	err := h.preferenceService.Update(c.Request.Context(), viewerID, req.Name, req.Value)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "name": req.Name})
	case errors.Is(err, user.ErrNotAjaxUpdatable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, user.ErrInvalidPreferenceValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.LogError(logging.ChannelSystem, "update_preference", err, map[string]any{"viewerId": viewerID, "name": req.Name})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store preference"})
	}
}

// GetPreference handles GET /api/v1/preferences/:name
func (h *PreferenceHandlers) GetPreference(c *gin.Context) {
	viewerID, ok := middleware.GetViewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	name := c.Param("name")
	if _, allowed := h.preferenceService.AllowedKind(name); !allowed {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown preference"})
		return
	}

	value, err := h.preferenceService.Get(c.Request.Context(), viewerID, name)
	if err != nil {
		h.logger.LogError(logging.ChannelSystem, "get_preference", err, map[string]any{"viewerId": viewerID, "name": name})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preference"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": value})
}
