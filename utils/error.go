package utils

import (
	"net/http"

	"dentflow/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is a middleware to catch panics and return the failure envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.FullPath()))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					models.Fail("internal_error", "An unexpected error occurred. Please try again later."))
			}
		}()
		c.Next()
	}
}

// JSONError sends the standardized failure envelope and logs it at warn level.
func JSONError(c *gin.Context, status int, code, message string) {
	GetLogger().Warn(message, zap.String("code", code), zap.Int("status", status))
	c.AbortWithStatusJSON(status, models.Fail(code, message))
}
