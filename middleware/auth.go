package middleware

import (
	"net/http"
	"strings"
	"time"

	"dentflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the staff bearer token and scopes the request to its clinic.
// A nil revocations client skips the revocation check.
func JWTAuthMiddleware(revocations *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
			return
		}

		if revocations != nil {
			revoked, err := utils.IsTokenRevoked(c.Request.Context(), revocations, tokenString)
			if err != nil {
				utils.GetLogger().Warn("revocation check failed", zap.Error(err))
			} else if revoked {
				utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
				return
			}
		}

		c.Set(utils.ContextClinicID, claims.ClinicID)
		c.Set(utils.ContextSubject, claims.Subject)
		c.Set(utils.ContextToken, tokenString)
		c.Set(utils.ContextTokenExp, time.Unix(claims.ExpiresAt, 0))
		if l, ok := c.Get(utils.ContextLogger); ok {
			if logger, ok := l.(*zap.Logger); ok {
				c.Set(utils.ContextLogger, logger.With(zap.String("clinicID", claims.ClinicID)))
			}
		}
		c.Next()
	}
}
