// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// ViewerCookie carries the viewer token when no Authorization header is sent.
const ViewerCookie = "ace_token"

const viewerIDKey = "viewerID"

// ViewerMiddleware authenticates the viewer from a Bearer token or the
// ace_token cookie and stores the host user id on the request.
func ViewerMiddleware(jwtSecret string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(ViewerCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			logger.Auth().Warn("Missing viewer token", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := security.ValidateJWT(token, jwtSecret)
		if err != nil {
			logger.Auth().Warn("Rejected viewer token", "path", c.Request.URL.Path, "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		viewerID, err := security.ViewerIDFromClaims(claims)
		if err != nil {
			logger.Auth().Warn("Viewer token without subject", "path", c.Request.URL.Path, "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		c.Set(viewerIDKey, viewerID)
		c.Next()
	}
}

// GetViewerID returns the authenticated host user id.
func GetViewerID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(viewerIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
