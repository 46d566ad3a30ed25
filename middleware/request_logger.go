package middleware

import (
	"time"

	"dentflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped zap logger and logs each finished request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		logger := utils.GetLogger().With(zap.String("requestID", requestID))
		c.Set(utils.ContextRequestID, requestID)
		c.Set(utils.ContextLogger, logger)
		c.Header(requestIDHeader, requestID)

		started := time.Now()
		c.Next()

		if l, ok := c.Get(utils.ContextLogger); ok {
			if scoped, ok := l.(*zap.Logger); ok {
				logger = scoped
			}
		}
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(started)),
			zap.String("ip", getClientIP(c)),
		)
	}
}
