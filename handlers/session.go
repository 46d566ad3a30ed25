package handlers

import (
	"net/http"
	"time"

	"dentflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionHandler ends staff sessions by revoking their bearer token.
type SessionHandler struct {
	Revocations *redis.Client
}

// Logout revokes the caller's token until it would have expired anyway.
func (h *SessionHandler) Logout(c *gin.Context) {
	logger := getLogger(c)
	token := c.GetString(utils.ContextToken)
	ttl := time.Until(c.GetTime(utils.ContextTokenExp))

	if ttl > 0 {
		if err := utils.RevokeToken(c.Request.Context(), h.Revocations, token, ttl); err != nil {
			logger.Error("failed to revoke token", zap.String("subject", subject(c)), zap.Error(err))
			respondError(c, err)
			return
		}
	}
	logger.Info("staff session ended", zap.String("subject", subject(c)))
	respondOK(c, http.StatusOK, gin.H{"revoked": true})
}
