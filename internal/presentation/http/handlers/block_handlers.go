// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/application/services"
	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/ace-block/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// CreateBlockRequest places a block in a context.
type CreateBlockRequest struct {
	ParentContextID int64  `json:"parentContextId" binding:"required"`
	GraphType       string `json:"graphtype"`
}

// ConfigureBlockRequest sets the graph type of a block.
type ConfigureBlockRequest struct {
	GraphType string `json:"graphtype"`
}

// BlockHandlers contains all block-related HTTP handlers
type BlockHandlers struct {
	blockService    *services.BlockService
	instanceService *services.BlockInstanceService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewBlockHandlers creates block handlers with injected dependencies
func NewBlockHandlers(blockService *services.BlockService, instanceService *services.BlockInstanceService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *BlockHandlers {
	return &BlockHandlers{
		blockService:    blockService,
		instanceService: instanceService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// GetBlockContent handles GET /api/v1/blocks/:id/content
//
// Query: pagecontextid (required), contextid, course, format=html|json.
// Empty output is answered with 204.
func (h *BlockHandlers) GetBlockContent(c *gin.Context) {
	start := time.Now()
	instanceID := c.Param("id")
	log := h.logger.WithContext(logging.ChannelContent, c.Request.Context())
	log.Debug("Received block content request", "method", c.Request.Method, "path", c.Request.URL.Path, "instanceId", instanceID)

	viewerID, ok := middleware.GetViewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	marker := h.perfTracker.StartOperation("get_block_content_request", instanceID)
	defer h.perfTracker.CompleteOperation(marker)

	pageContextID, err := strconv.ParseInt(c.Query("pagecontextid"), 10, 64)
	if err != nil || pageContextID <= 0 {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "pagecontextid is required"})
		return
	}

	format := c.DefaultQuery("format", "html")
	if format != "html" && format != "json" {
		marker.SetSuccess(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be html or json"})
		return
	}

	viewer, err := h.blockService.NewViewerContext(c.Request.Context(), services.ViewerRequest{
		CurrentUserID:      viewerID,
		PageContextID:      pageContextID,
		RequestedContextID: optionalInt(c.Query("contextid")),
		RequestedCourseID:  optionalInt(c.Query("course")),
	})
	if err != nil {
		marker.SetError(err)
		h.writeError(c, err)
		return
	}

	output, err := h.blockService.RenderInstance(c.Request.Context(), instanceID, viewer)
	if err != nil {
		marker.SetError(err)
		h.writeError(c, err)
		return
	}

	log.Info("Block content request completed", "instanceId", instanceID, "viewerId", viewerID, "empty", output.IsEmpty(), "duration", time.Since(start))

	if output.IsEmpty() {
		c.Status(http.StatusNoContent)
		return
	}
	if format == "json" {
		c.JSON(http.StatusOK, output)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(output.Text))
}

// GetGraphTypes handles GET /api/v1/blocks/graphtypes
func (h *BlockHandlers) GetGraphTypes(c *gin.Context) {
	options := h.instanceService.GraphTypeOptions()
	c.JSON(http.StatusOK, gin.H{
		"graphtypes": options,
		"default":    block.DefaultGraphType,
		"count":      len(options),
	})
}

// GetBlock handles GET /api/v1/blocks/:id
func (h *BlockHandlers) GetBlock(c *gin.Context) {
	instance, err := h.instanceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

// CreateBlock handles POST /api/v1/blocks
func (h *BlockHandlers) CreateBlock(c *gin.Context) {
	viewerID, ok := middleware.GetViewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	instance, err := h.instanceService.Create(c.Request.Context(), viewerID, req.ParentContextID, req.GraphType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, instance)
}

// ConfigureBlock handles PUT /api/v1/blocks/:id/config
func (h *BlockHandlers) ConfigureBlock(c *gin.Context) {
	viewerID, ok := middleware.GetViewerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req ConfigureBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	instance, err := h.instanceService.Configure(c.Request.Context(), viewerID, c.Param("id"), req.GraphType)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instance)
}

// ListContextBlocks handles GET /api/v1/contexts/:id/blocks
func (h *BlockHandlers) ListContextBlocks(c *gin.Context) {
	contextID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid context id"})
		return
	}

	instances, err := h.instanceService.ListForContext(c.Request.Context(), contextID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"blocks": instances,
		"count":  len(instances),
	})
}

func (h *BlockHandlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, block.ErrUnknownMode):
		status = http.StatusBadRequest
	case errors.Is(err, block.ErrInstanceNotFound),
		errors.Is(err, access.ErrContextNotFound),
		services.IsUserNotFound(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.logger.WithContext(logging.ChannelSystem, c.Request.Context()).Error("Block request failed",
			"path", c.Request.URL.Path, "error", err.Error())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// optionalInt parses an optional id parameter; absent or malformed values are 0.
func optionalInt(value string) int64 {
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
