package booking

import (
	"context"
	"time"

	appointmentTypeRepo "dentflow/database/repository/appointmenttype"
	providerRepo "dentflow/database/repository/provider"
	schedulerRepo "dentflow/database/repository/scheduler"
	"dentflow/metrics"
	"dentflow/models"
)

// SchedulingService computes availability and runs the transactional appointment flows.
type SchedulingService interface {
	GetAvailableSlots(ctx context.Context, q SlotQuery) ([]models.TimeSlot, error)
	Book(ctx context.Context, req BookingRequest) (*Outcome, error)
	Reschedule(ctx context.Context, clinicID, appointmentID string, req RescheduleRequest) (*Outcome, error)
	Cancel(ctx context.Context, clinicID, appointmentID, reason string) (*Outcome, error)
	Transition(ctx context.Context, clinicID, appointmentID string, to models.AppointmentStatus) (*Outcome, error)
	GetAppointment(ctx context.Context, clinicID, appointmentID string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}

// DayLocker serializes writers of a provider-day. Implemented by utils.RedisScheduleLocker.
type DayLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// EventPublisher hands committed changes to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event models.AppointmentEvent) error
	ScheduleReminder(ctx context.Context, appt *models.Appointment, fireAt time.Time) error
}

// Options tunes slot generation and reminders.
type Options struct {
	SlotStep        time.Duration
	CandidateLimit  int
	DefaultTimezone string
	ReminderLead    time.Duration
}

func DefaultOptions() Options {
	return Options{
		SlotStep:        15 * time.Minute,
		CandidateLimit:  200,
		DefaultTimezone: "America/Sao_Paulo",
		ReminderLead:    24 * time.Hour,
	}
}

// withDefaults fills every unset or non-positive field from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SlotStep <= 0 {
		o.SlotStep = def.SlotStep
	}
	if o.CandidateLimit <= 0 {
		o.CandidateLimit = def.CandidateLimit
	}
	if o.DefaultTimezone == "" {
		o.DefaultTimezone = def.DefaultTimezone
	}
	if o.ReminderLead <= 0 {
		o.ReminderLead = def.ReminderLead
	}
	return o
}

// DefaultSchedulingService implements SchedulingService. Locker, Events and Metrics are optional.
type DefaultSchedulingService struct {
	Appointments schedulerRepo.AppointmentRepository
	Providers    providerRepo.ProviderRepository
	Types        appointmentTypeRepo.AppointmentTypeRepository
	Locker       DayLocker
	Events       EventPublisher
	Metrics      *metrics.SchedulingMetrics
	Options      Options
	Now          func() time.Time
}

// BookingRequest is the input of Book. ScheduledStart is RFC3339.
type BookingRequest struct {
	ClinicID          string          `json:"-"`
	PatientID         string          `json:"patientId"`
	ProviderID        string          `json:"providerId"`
	AppointmentTypeID string          `json:"appointmentTypeId"`
	ScheduledStart    string          `json:"scheduledStart"`
	Notes             string          `json:"notes,omitempty"`
	Priority          models.Priority `json:"priority,omitempty"`
	CreatedBy         string          `json:"-"`
}

// RescheduleRequest is the input of Reschedule. NewStart is RFC3339.
type RescheduleRequest struct {
	NewStart     string                 `json:"newStart"`
	Reason       string                 `json:"reason"`
	RescheduleBy models.RescheduleActor `json:"rescheduleBy"`
}

// SlotQuery is the input of GetAvailableSlots. An empty ProviderID searches every eligible provider.
type SlotQuery struct {
	ClinicID             string
	ProviderID           string
	AppointmentTypeID    string
	Date                 string
	ExcludeAppointmentID string
}

// Outcome is a committed appointment plus non-fatal warnings.
type Outcome struct {
	Appointment *models.Appointment
	Warnings    []string
}
