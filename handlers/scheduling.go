package handlers

import (
	"net/http"
	"strconv"
	"time"

	"dentflow/models"
	"dentflow/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler serves availability and appointment endpoints.
type SchedulingHandler struct {
	Service booking.SchedulingService
}

// GetAvailableSlots handles GET /slots.
func (h *SchedulingHandler) GetAvailableSlots(c *gin.Context) {
	q := booking.SlotQuery{
		ClinicID:             clinicID(c),
		ProviderID:           c.Query("providerId"),
		AppointmentTypeID:    c.Query("appointmentTypeId"),
		Date:                 c.Query("date"),
		ExcludeAppointmentID: c.Query("excludeAppointmentId"),
	}
	slots, err := h.Service.GetAvailableSlots(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, slots)
}

// CreateAppointment handles POST /appointments.
func (h *SchedulingHandler) CreateAppointment(c *gin.Context) {
	var req booking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ClinicID = clinicID(c)
	req.CreatedBy = subject(c)

	out, err := h.Service.Book(c.Request.Context(), req)
	if err != nil {
		getLogger(c).Info("booking rejected", zap.String("providerID", req.ProviderID), zap.Error(err))
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, out.Appointment, out.Warnings...)
}

// GetAppointment handles GET /appointments/:id.
func (h *SchedulingHandler) GetAppointment(c *gin.Context) {
	appt, err := h.Service.GetAppointment(c.Request.Context(), clinicID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, appt)
}

// ListAppointments handles GET /appointments.
func (h *SchedulingHandler) ListAppointments(c *gin.Context) {
	filter := models.AppointmentFilter{
		ClinicID:   clinicID(c),
		ProviderID: c.Query("providerId"),
		PatientID:  c.Query("patientId"),
		Status:     models.AppointmentStatus(c.Query("status")),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		respondError(c, err)
		return
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		respondError(c, err)
		return
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit <= 0 {
			respondError(c, booking.NewValidationError("limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	appts, err := h.Service.ListAppointments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, appts)
}

// RescheduleAppointment handles PUT /appointments/:id/reschedule.
func (h *SchedulingHandler) RescheduleAppointment(c *gin.Context) {
	var req booking.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.Reschedule(c.Request.Context(), clinicID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out.Appointment, out.Warnings...)
}

// CancelAppointment handles PUT /appointments/:id/cancel. The body is optional.
func (h *SchedulingHandler) CancelAppointment(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
	}
	out, err := h.Service.Cancel(c.Request.Context(), clinicID(c), c.Param("id"), body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out.Appointment, out.Warnings...)
}

// UpdateStatus handles PUT /appointments/:id/status.
func (h *SchedulingHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status models.AppointmentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Service.Transition(c.Request.Context(), clinicID(c), c.Param("id"), body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, out.Appointment, out.Warnings...)
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, booking.NewValidationError(key+" must be an RFC3339 timestamp", raw)
	}
	return &t, nil
}
