package notification

import (
	"fmt"
	"time"

	"dentflow/models"
)

const displayLayout = "Mon 02 Jan 2006 15:04 MST"

// FromEvent builds the notification for an appointment event. loc renders times and may be nil.
func FromEvent(e models.AppointmentEvent, loc *time.Location) models.Notification {
	when := render(e.ScheduledStart, loc)
	n := models.Notification{
		Kind:          e.Type,
		ClinicID:      e.ClinicID,
		AppointmentID: e.AppointmentID,
		PatientID:     e.PatientID,
		ProviderID:    e.ProviderID,
		Data: map[string]string{
			"appointmentId": e.AppointmentID,
			"status":        string(e.Status),
			"start":         e.ScheduledStart.UTC().Format(time.RFC3339),
		},
	}
	switch e.Type {
	case models.EventAppointmentBooked:
		n.Title = "Appointment booked"
		n.Body = fmt.Sprintf("Your appointment is booked for %s.", when)
		if e.Status == models.StatusScheduled {
			n.Body += " The clinic will confirm it shortly."
		}
	case models.EventAppointmentRescheduled:
		n.Title = "Appointment rescheduled"
		n.Body = fmt.Sprintf("Your appointment was moved to %s.", when)
		if e.PreviousStart != nil {
			n.Body = fmt.Sprintf("Your appointment was moved from %s to %s.", render(*e.PreviousStart, loc), when)
		}
	case models.EventAppointmentCancelled:
		n.Title = "Appointment cancelled"
		n.Body = fmt.Sprintf("Your appointment on %s was cancelled.", when)
		if e.Reason != "" {
			n.Body += " Reason: " + e.Reason
		}
	default:
		n.Title = "Appointment updated"
		n.Body = fmt.Sprintf("Your appointment on %s is now %s.", when, e.Status)
	}
	return n
}

// Reminder builds the reminder notification for an appointment.
func Reminder(a *models.Appointment, loc *time.Location) models.Notification {
	return models.Notification{
		Kind:          models.EventAppointmentReminder,
		ClinicID:      a.ClinicID,
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		ProviderID:    a.ProviderID,
		Title:         "Appointment reminder",
		Body:          fmt.Sprintf("Reminder: you have an appointment on %s.", render(a.ScheduledStart, loc)),
		Data: map[string]string{
			"appointmentId": a.ID,
			"start":         a.ScheduledStart.UTC().Format(time.RFC3339),
		},
	}
}

func render(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(displayLayout)
}
