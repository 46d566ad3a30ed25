package booking

import (
	"context"
	"time"

	"dentflow/models"
	"dentflow/utils"

	"go.uber.org/zap"
)

const (
	EventBooked        = models.EventAppointmentBooked
	EventRescheduled   = models.EventAppointmentRescheduled
	EventCancelled     = models.EventAppointmentCancelled
	EventStatusChanged = models.EventAppointmentStatusChanged
)

// announce publishes a committed change and, for active appointments, schedules the reminder.
// Failures never undo the change; they come back as warnings.
func (s *DefaultSchedulingService) announce(ctx context.Context, kind string, appt *models.Appointment, previousStart *time.Time, reason string) []string {
	if s.Events == nil {
		return nil
	}
	logger := utils.GetLogger()
	var warnings []string

	event := models.AppointmentEvent{
		Type:           kind,
		ClinicID:       appt.ClinicID,
		AppointmentID:  appt.ID,
		PatientID:      appt.PatientID,
		ProviderID:     appt.ProviderID,
		Status:         appt.Status,
		ScheduledStart: appt.ScheduledStart,
		PreviousStart:  previousStart,
		Reason:         reason,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.Events.Publish(ctx, event); err != nil {
		logger.Warn("failed to enqueue appointment event",
			zap.String("appointmentID", appt.ID), zap.String("event", kind), zap.Error(err))
		warnings = append(warnings, "notification could not be queued")
	}

	if kind == EventBooked || kind == EventRescheduled {
		fireAt := appt.ScheduledStart.Add(-s.options().ReminderLead)
		if fireAt.After(s.now()) {
			if err := s.Events.ScheduleReminder(ctx, appt, fireAt); err != nil {
				logger.Warn("failed to schedule appointment reminder",
					zap.String("appointmentID", appt.ID), zap.Error(err))
				warnings = append(warnings, "reminder could not be scheduled")
			}
		}
	}
	return warnings
}
