package booking

import (
	"context"
	"strings"
	"time"

	"dentflow/models"
	"dentflow/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Book creates an appointment after re-checking the requested interval inside a transaction.
func (s *DefaultSchedulingService) Book(ctx context.Context, req BookingRequest) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "booking.Book")
	span.SetAttributes(clinicAttr(req.ClinicID))
	defer func(started time.Time) { s.observe(span, "book", started, err) }(time.Now())

	start, err := validateBooking(&req)
	if err != nil {
		return nil, err
	}

	var appt *models.Appointment
	var requiresApproval bool
	err = s.withDayLock(ctx, req.ClinicID, req.ProviderID, start, func(ctx context.Context) error {
		return s.inTransaction(ctx, "book", func(tc context.Context) error {
			apptType, err := s.loadType(tc, req.ClinicID, req.AppointmentTypeID, true)
			if err != nil {
				return err
			}
			provider, err := s.loadProvider(tc, req.ClinicID, req.ProviderID)
			if err != nil {
				return err
			}
			if !provider.Offers(apptType.ID) {
				return NewValidationError("provider does not offer this appointment type")
			}
			if err := s.lockDay(tc, provider, start); err != nil {
				return err
			}
			interval, buffers, err := s.checkAvailability(tc, provider, apptType, start, "")
			if err != nil {
				return err
			}

			now := s.now().UTC()
			status := models.StatusConfirmed
			if apptType.RequiresApproval {
				status = models.StatusScheduled
			}
			candidate := &models.Appointment{
				ID:                  uuid.New().String(),
				ClinicID:            req.ClinicID,
				PatientID:           req.PatientID,
				ProviderID:          provider.ID,
				AppointmentTypeID:   apptType.ID,
				ScheduledStart:      interval.Start.UTC(),
				ScheduledEnd:        interval.End.UTC(),
				BufferBeforeMinutes: int(buffers.Before / time.Minute),
				BufferAfterMinutes:  int(buffers.After / time.Minute),
				Status:              status,
				Priority:            req.Priority,
				Notes:               req.Notes,
				RescheduleHistory:   []models.RescheduleEntry{},
				CreatedBy:           req.CreatedBy,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := s.Appointments.Insert(tc, candidate); err != nil {
				return err
			}
			appt = candidate
			requiresApproval = apptType.RequiresApproval
			return nil
		})
	})
	if err != nil {
		return nil, mapStoreError("book appointment", err)
	}

	utils.GetLogger().Info("appointment booked",
		zap.String("appointmentID", appt.ID),
		zap.String("clinicID", appt.ClinicID),
		zap.String("providerID", appt.ProviderID),
		zap.Time("start", appt.ScheduledStart),
		zap.String("status", string(appt.Status)))

	out = &Outcome{Appointment: appt}
	if requiresApproval {
		out.Warnings = append(out.Warnings, "appointment type requires approval; appointment is awaiting confirmation")
	}
	if appt.ScheduledStart.Before(s.now()) {
		out.Warnings = append(out.Warnings, "scheduled start is in the past")
	}
	out.Warnings = append(out.Warnings, s.announce(ctx, EventBooked, appt, nil, "")...)
	return out, nil
}

func validateBooking(req *BookingRequest) (time.Time, error) {
	var problems validationErrors
	problems.require(req.ClinicID, "clinicId")
	problems.require(req.PatientID, "patientId")
	problems.require(req.ProviderID, "providerId")
	problems.require(req.AppointmentTypeID, "appointmentTypeId")
	problems.require(req.CreatedBy, "createdBy")

	var start time.Time
	if strings.TrimSpace(req.ScheduledStart) == "" {
		problems.add("scheduledStart is required")
	} else if t, err := time.Parse(time.RFC3339, req.ScheduledStart); err != nil {
		problems.add("scheduledStart must be an RFC3339 timestamp")
	} else {
		start = t
	}

	if req.Priority == "" {
		req.Priority = models.PriorityRoutine
	} else if !req.Priority.Valid() {
		problems.add("priority must be one of routine, urgent, emergency")
	}
	return start, problems.err()
}
