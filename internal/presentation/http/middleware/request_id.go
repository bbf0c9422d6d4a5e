package middleware

import (
	"context"

	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestIDMiddleware reuses the caller's request id or assigns a ULID, echoes
// it on the response and stores it on the request context where
// ChanneledLogger.WithContext picks it up.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = security.GenerateULID()
		}

		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logging.RequestIDKey, requestID))
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestIDMiddleware, if any.
func GetRequestID(c *gin.Context) string {
	requestID, _ := c.Request.Context().Value(logging.RequestIDKey).(string)
	return requestID
}
