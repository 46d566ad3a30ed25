package routes

import (
	"net/http"
	"time"

	"dentflow/config"
	"dentflow/handlers"
	"dentflow/middleware"
	"dentflow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSchedulingRoutes registers availability and appointment endpoints.
func RegisterSchedulingRoutes(api *gin.RouterGroup, h *handlers.SchedulingHandler) {
	api.GET("/slots", h.GetAvailableSlots)

	appointments := api.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.PUT("/:id/cancel", h.CancelAppointment)
		appointments.PUT("/:id/status", h.UpdateStatus)
	}
}

// RegisterProviderRoutes registers provider and appointment-type management endpoints.
func RegisterProviderRoutes(api *gin.RouterGroup, h *handlers.ProviderHandler) {
	providers := api.Group("/providers")
	{
		providers.POST("", h.CreateProvider)
		providers.GET("", h.ListProviders)
		providers.GET("/:id", h.GetProvider)
		providers.PUT("/:id", h.UpdateProvider)
	}

	types := api.Group("/appointment-types")
	{
		types.POST("", h.CreateAppointmentType)
		types.GET("", h.ListAppointmentTypes)
		types.GET("/:id", h.GetAppointmentType)
		types.PUT("/:id", h.UpdateAppointmentType)
	}
}

// RegisterHealthRoute reports the last dependency snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "message": "dentflow scheduling"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
// revocations may be nil, which disables the token revocation check.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, revocations *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  config.AllowedOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/clinics")
	api.Use(middleware.JWTAuthMiddleware(revocations))
	RegisterSchedulingRoutes(api, hb.Scheduling)
	RegisterProviderRoutes(api, hb.Providers)
	if hb.Session != nil {
		api.POST("/session/logout", hb.Session.Logout)
	}
}
