package handlers

import (
	"net/http"

	"dentflow/models"
	"dentflow/services/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProviderHandler serves provider and appointment-type management.
type ProviderHandler struct {
	Service provider.ProviderService
}

// CreateProvider handles POST /providers.
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var in models.ProviderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.CreateProvider(c.Request.Context(), clinicID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("provider registered", zap.String("providerID", p.ID))
	respondOK(c, http.StatusCreated, p)
}

// UpdateProvider handles PUT /providers/:id.
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	var in models.ProviderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.Service.UpdateProvider(c.Request.Context(), clinicID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

// GetProvider handles GET /providers/:id.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	p, err := h.Service.GetProvider(c.Request.Context(), clinicID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, p)
}

// ListProviders handles GET /providers. ?active=true hides inactive providers.
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers, err := h.Service.ListProviders(c.Request.Context(), clinicID(c), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, providers)
}

// CreateAppointmentType handles POST /appointment-types.
func (h *ProviderHandler) CreateAppointmentType(c *gin.Context) {
	var in models.AppointmentTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Service.CreateAppointmentType(c.Request.Context(), clinicID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, t)
}

// UpdateAppointmentType handles PUT /appointment-types/:id.
func (h *ProviderHandler) UpdateAppointmentType(c *gin.Context) {
	var in models.AppointmentTypeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.Service.UpdateAppointmentType(c.Request.Context(), clinicID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

// GetAppointmentType handles GET /appointment-types/:id.
func (h *ProviderHandler) GetAppointmentType(c *gin.Context) {
	t, err := h.Service.GetAppointmentType(c.Request.Context(), clinicID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, t)
}

// ListAppointmentTypes handles GET /appointment-types.
func (h *ProviderHandler) ListAppointmentTypes(c *gin.Context) {
	types, err := h.Service.ListAppointmentTypes(c.Request.Context(), clinicID(c), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, types)
}
