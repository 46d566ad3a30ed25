package models

import "time"

// TimeSlot is an available, bookable interval. Unavailable slots are never returned.
type TimeSlot struct {
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Available         bool      `json:"available"`
	ProviderID        string    `json:"providerId"`
	AppointmentTypeID string    `json:"appointmentTypeId"`
}
