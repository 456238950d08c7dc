package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// requestID tags every request with a UUID. A well-formed incoming id is
// kept so a proxy's id flows through.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one record per request once the chain has finished.
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration", time.Since(start),
			"remote", c.ClientIP(),
			requestIDKey, c.GetString(requestIDKey),
		)
	}
}

// recovery turns a panicking handler into a 500 and logs it.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("http.panic",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
			requestIDKey, c.GetString(requestIDKey),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
