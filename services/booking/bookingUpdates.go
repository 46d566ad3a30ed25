package booking

import (
	"context"
	"strings"
	"time"

	"dentflow/models"
	"dentflow/utils"

	"go.uber.org/zap"
)

// reschedulable lists the statuses an appointment may be moved from.
func reschedulable(s models.AppointmentStatus) bool {
	return s == models.StatusScheduled || s == models.StatusConfirmed
}

// Reschedule moves an appointment to newStart with the same provider and type. On any
// failure the stored appointment, including its history, is left as it was.
func (s *DefaultSchedulingService) Reschedule(ctx context.Context, clinicID, appointmentID string, req RescheduleRequest) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "booking.Reschedule")
	span.SetAttributes(clinicAttr(clinicID))
	defer func(started time.Time) { s.observe(span, "reschedule", started, err) }(time.Now())

	var problems validationErrors
	problems.require(clinicID, "clinicId")
	problems.require(appointmentID, "appointmentId")
	var newStart time.Time
	if strings.TrimSpace(req.NewStart) == "" {
		problems.add("newStart is required")
	} else if t, perr := time.Parse(time.RFC3339, req.NewStart); perr != nil {
		problems.add("newStart must be an RFC3339 timestamp")
	} else {
		newStart = t
	}
	if !req.RescheduleBy.Valid() {
		problems.add("rescheduleBy must be patient or clinic")
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	current, err := s.loadAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !reschedulable(current.Status) {
		return nil, NewInvalidTransition("cannot reschedule an appointment that is %s", current.Status)
	}

	var appt *models.Appointment
	var previousStart time.Time
	err = s.withDayLock(ctx, clinicID, current.ProviderID, newStart, func(ctx context.Context) error {
		return s.inTransaction(ctx, "reschedule", func(tc context.Context) error {
			a, err := s.loadAppointment(tc, clinicID, appointmentID)
			if err != nil {
				return err
			}
			if !reschedulable(a.Status) {
				return NewInvalidTransition("cannot reschedule an appointment that is %s", a.Status)
			}
			apptType, err := s.loadType(tc, clinicID, a.AppointmentTypeID, false)
			if err != nil {
				return err
			}
			provider, err := s.loadProvider(tc, clinicID, a.ProviderID)
			if err != nil {
				return err
			}
			if err := s.lockDay(tc, provider, newStart); err != nil {
				return err
			}
			interval, buffers, err := s.checkAvailability(tc, provider, apptType, newStart, a.ID)
			if err != nil {
				return err
			}

			now := s.now().UTC()
			entry := models.RescheduleEntry{
				OldDate:      a.ScheduledStart,
				NewDate:      interval.Start.UTC(),
				Reason:       req.Reason,
				RescheduleBy: req.RescheduleBy,
				Timestamp:    now,
			}
			previousStart = a.ScheduledStart
			a.RescheduleHistory = append(a.RescheduleHistory, entry)
			a.ScheduledStart = interval.Start.UTC()
			a.ScheduledEnd = interval.End.UTC()
			a.BufferBeforeMinutes = int(buffers.Before / time.Minute)
			a.BufferAfterMinutes = int(buffers.After / time.Minute)
			a.Status = models.StatusScheduled
			a.UpdatedAt = now
			if err := s.Appointments.AppendReschedule(tc, a, entry); err != nil {
				return err
			}
			appt = a
			return nil
		})
	})
	if err != nil {
		return nil, mapStoreError("reschedule appointment", err)
	}

	utils.GetLogger().Info("appointment rescheduled",
		zap.String("appointmentID", appt.ID),
		zap.Time("from", previousStart),
		zap.Time("to", appt.ScheduledStart),
		zap.String("by", string(req.RescheduleBy)))

	return &Outcome{
		Appointment: appt,
		Warnings:    s.announce(ctx, EventRescheduled, appt, &previousStart, req.Reason),
	}, nil
}

// Cancel marks an appointment cancelled. Terminal appointments are rejected unchanged.
func (s *DefaultSchedulingService) Cancel(ctx context.Context, clinicID, appointmentID, reason string) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel")
	span.SetAttributes(clinicAttr(clinicID))
	defer func(started time.Time) { s.observe(span, "cancel", started, err) }(time.Now())

	if clinicID == "" || appointmentID == "" {
		return nil, NewValidationError("clinicId and appointment id are required")
	}

	var appt *models.Appointment
	err = s.inTransaction(ctx, "cancel", func(tc context.Context) error {
		a, err := s.loadAppointment(tc, clinicID, appointmentID)
		if err != nil {
			return err
		}
		if a.Status.IsTerminal() {
			return NewInvalidTransition("cannot cancel an appointment that is %s", a.Status)
		}
		if err := applyTransition(a, models.StatusCancelled, s.now().UTC()); err != nil {
			return err
		}
		a.CancellationReason = reason
		if err := s.Appointments.UpdateStatus(tc, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, mapStoreError("cancel appointment", err)
	}

	utils.GetLogger().Info("appointment cancelled",
		zap.String("appointmentID", appt.ID), zap.String("reason", reason))

	return &Outcome{
		Appointment: appt,
		Warnings:    s.announce(ctx, EventCancelled, appt, nil, reason),
	}, nil
}
