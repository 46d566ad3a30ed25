package models

import "time"

// Appointment event types.
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentRescheduled   = "appointment.rescheduled"
	EventAppointmentCancelled     = "appointment.cancelled"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentReminder      = "appointment.reminder"
)

// AppointmentEvent is the payload carried by appointment notification tasks.
type AppointmentEvent struct {
	Type           string            `json:"type"`
	ClinicID       string            `json:"clinicId"`
	AppointmentID  string            `json:"appointmentId"`
	PatientID      string            `json:"patientId"`
	ProviderID     string            `json:"providerId"`
	Status         AppointmentStatus `json:"status"`
	ScheduledStart time.Time         `json:"scheduledStart"`
	PreviousStart  *time.Time        `json:"previousStart,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// Notification is what the worker hands to a Notifier.
type Notification struct {
	Kind          string            `json:"kind"`
	ClinicID      string            `json:"clinicId"`
	AppointmentID string            `json:"appointmentId"`
	PatientID     string            `json:"patientId"`
	ProviderID    string            `json:"providerId"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Data          map[string]string `json:"data"`
}
