package booking

import (
	"context"
	"time"

	"dentflow/models"
	"dentflow/utils"

	"go.uber.org/zap"
)

// transitions is the appointment state machine. Terminal states have no entry.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled:  {models.StatusConfirmed, models.StatusCancelled, models.StatusNoShow},
	models.StatusConfirmed:  {models.StatusCheckedIn, models.StatusCancelled, models.StatusNoShow},
	models.StatusCheckedIn:  {models.StatusInProgress, models.StatusCancelled, models.StatusNoShow},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyTransition moves a to status `to` and runs the post-transition hook.
func applyTransition(a *models.Appointment, to models.AppointmentStatus, at time.Time) error {
	from := a.Status
	if !CanTransition(from, to) {
		return NewInvalidTransition("cannot move appointment from %s to %s", from, to)
	}
	a.Status = to
	a.UpdatedAt = at
	afterTransition(a, to, at)
	return nil
}

// afterTransition stamps the realized timeline and recomputes derived fields.
func afterTransition(a *models.Appointment, to models.AppointmentStatus, at time.Time) {
	stamp := func() *time.Time {
		t := at
		return &t
	}
	switch to {
	case models.StatusCheckedIn:
		a.CheckedInAt = stamp()
	case models.StatusInProgress:
		a.ActualStart = stamp()
	case models.StatusCompleted:
		a.ActualEnd = stamp()
		a.CompletedAt = stamp()
	}
	RecomputeDerived(a)
}

// RecomputeDerived sets duration and wait time from the actual timestamps. Each is
// cleared unless both of its endpoints are present.
func RecomputeDerived(a *models.Appointment) {
	a.DurationMinutes = minutesBetween(a.ActualStart, a.ActualEnd)
	a.WaitTimeMinutes = minutesBetween(a.CheckedInAt, a.ActualStart)
}

func minutesBetween(from, to *time.Time) *int {
	if from == nil || to == nil {
		return nil
	}
	m := int(to.Sub(*from) / time.Minute)
	return &m
}

// Transition advances an appointment through the state machine.
func (s *DefaultSchedulingService) Transition(ctx context.Context, clinicID, appointmentID string, to models.AppointmentStatus) (out *Outcome, err error) {
	ctx, span := tracer.Start(ctx, "booking.Transition")
	span.SetAttributes(clinicAttr(clinicID))
	defer func(started time.Time) { s.observe(span, "transition", started, err) }(time.Now())

	if clinicID == "" || appointmentID == "" {
		return nil, NewValidationError("clinicId and appointment id are required")
	}
	if !to.Valid() {
		return nil, NewValidationError("unknown status", string(to))
	}

	var appt *models.Appointment
	var from models.AppointmentStatus
	err = s.inTransaction(ctx, "transition", func(tc context.Context) error {
		a, err := s.loadAppointment(tc, clinicID, appointmentID)
		if err != nil {
			return err
		}
		from = a.Status
		if err := applyTransition(a, to, s.now().UTC()); err != nil {
			return err
		}
		if err := s.Appointments.UpdateStatus(tc, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	if err != nil {
		return nil, mapStoreError("transition appointment", err)
	}

	utils.GetLogger().Info("appointment status changed",
		zap.String("appointmentID", appt.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	kind := EventStatusChanged
	if to == models.StatusCancelled {
		kind = EventCancelled
	}
	return &Outcome{Appointment: appt, Warnings: s.announce(ctx, kind, appt, nil, "")}, nil
}
