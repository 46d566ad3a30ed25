package models

import "time"

// AppointmentStatus is a node of the appointment state machine.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusCheckedIn  AppointmentStatus = "checked_in"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// IsTerminal reports whether no ordinary transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// BlocksSchedule reports whether an appointment in status s occupies its interval.
func (s AppointmentStatus) BlocksSchedule() bool {
	return s != StatusCancelled && s != StatusNoShow
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Priority is informational only.
type Priority string

const (
	PriorityRoutine   Priority = "routine"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) Valid() bool {
	return p == PriorityRoutine || p == PriorityUrgent || p == PriorityEmergency
}

// RescheduleActor identifies who asked for a reschedule.
type RescheduleActor string

const (
	RescheduledByPatient RescheduleActor = "patient"
	RescheduledByClinic  RescheduleActor = "clinic"
)

func (a RescheduleActor) Valid() bool {
	return a == RescheduledByPatient || a == RescheduledByClinic
}

// RescheduleEntry is one append-only record of a moved appointment.
type RescheduleEntry struct {
	OldDate      time.Time       `bson:"oldDate" json:"oldDate"`
	NewDate      time.Time       `bson:"newDate" json:"newDate"`
	Reason       string          `bson:"reason,omitempty" json:"reason,omitempty"`
	RescheduleBy RescheduleActor `bson:"rescheduleBy" json:"rescheduleBy"`
	Timestamp    time.Time       `bson:"timestamp" json:"timestamp"`
}

// Appointment is owned by its clinic; patient, provider and type are references by id.
type Appointment struct {
	ID                string `bson:"id" json:"id"`
	ClinicID          string `bson:"clinicId" json:"clinicId"`
	PatientID         string `bson:"patientId" json:"patientId"`
	ProviderID        string `bson:"providerId" json:"providerId"`
	AppointmentTypeID string `bson:"appointmentTypeId" json:"appointmentTypeId"`

	ScheduledStart time.Time `bson:"scheduledStart" json:"scheduledStart"`
	ScheduledEnd   time.Time `bson:"scheduledEnd" json:"scheduledEnd"`
	// Effective buffers at the time of the last write.
	BufferBeforeMinutes int `bson:"bufferBeforeMinutes" json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int `bson:"bufferAfterMinutes" json:"bufferAfterMinutes"`

	ActualStart *time.Time `bson:"actualStart,omitempty" json:"actualStart,omitempty"`
	ActualEnd   *time.Time `bson:"actualEnd,omitempty" json:"actualEnd,omitempty"`
	CheckedInAt *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	Status             AppointmentStatus `bson:"status" json:"status"`
	Priority           Priority          `bson:"priority" json:"priority"`
	Notes              string            `bson:"notes,omitempty" json:"notes,omitempty"`
	RescheduleHistory  []RescheduleEntry `bson:"rescheduleHistory" json:"rescheduleHistory"`
	CancellationReason string            `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`

	// Derived from the actual timestamps; see scheduling.RecomputeDerived.
	DurationMinutes *int `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	WaitTimeMinutes *int `bson:"waitTimeMinutes,omitempty" json:"waitTimeMinutes,omitempty"`

	CreatedBy string    `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentFilter narrows appointment listings within a clinic.
type AppointmentFilter struct {
	ClinicID   string
	ProviderID string
	PatientID  string
	Status     AppointmentStatus
	From       *time.Time
	To         *time.Time
	Limit      int64
}
