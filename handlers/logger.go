package handlers

import (
	"dentflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves the request-scoped logger, falling back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(utils.ContextLogger); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

func clinicID(c *gin.Context) string {
	return c.GetString(utils.ContextClinicID)
}

func subject(c *gin.Context) string {
	return c.GetString(utils.ContextSubject)
}
