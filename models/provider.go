package models

import "time"

// DayHours is one weekday entry of a provider's working hours.
type DayHours struct {
	Start     string `bson:"start" json:"start" binding:"omitempty,wallclock"`
	End       string `bson:"end" json:"end" binding:"omitempty,wallclock"`
	IsWorking bool   `bson:"isWorking" json:"isWorking"`
}

// WorkingHours is indexed by time.Weekday.
type WorkingHours [7]DayHours

// For returns the entry for the given weekday.
func (w WorkingHours) For(day time.Weekday) DayHours {
	return w[day]
}

// Provider is a clinician whose calendar can be booked.
type Provider struct {
	ID                  string       `bson:"id" json:"id"`
	ClinicID            string       `bson:"clinicId" json:"clinicId"`
	Name                string       `bson:"name" json:"name"`
	Timezone            string       `bson:"timezone" json:"timezone"`
	WorkingHours        WorkingHours `bson:"workingHours" json:"workingHours"`
	BufferBeforeMinutes int          `bson:"bufferBeforeMinutes" json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int          `bson:"bufferAfterMinutes" json:"bufferAfterMinutes"`
	Active              bool         `bson:"active" json:"active"`
	AppointmentTypeIDs  []string     `bson:"appointmentTypeIds" json:"appointmentTypeIds"`
	CreatedAt           time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// Offers reports whether the provider can be booked for an appointment type.
// An empty list means every type of the clinic.
func (p *Provider) Offers(appointmentTypeID string) bool {
	if len(p.AppointmentTypeIDs) == 0 {
		return true
	}
	for _, id := range p.AppointmentTypeIDs {
		if id == appointmentTypeID {
			return true
		}
	}
	return false
}

// ProviderInput is the writable part of a provider.
type ProviderInput struct {
	Name                string       `json:"name" binding:"required"`
	Timezone            string       `json:"timezone" binding:"omitempty,timezone"`
	WorkingHours        WorkingHours `json:"workingHours" binding:"dive"`
	BufferBeforeMinutes int          `json:"bufferBeforeMinutes" binding:"gte=0,lte=240"`
	BufferAfterMinutes  int          `json:"bufferAfterMinutes" binding:"gte=0,lte=240"`
	Active              *bool        `json:"active"`
	AppointmentTypeIDs  []string     `json:"appointmentTypeIds"`
}

// ProviderFilter narrows provider listings within a clinic.
type ProviderFilter struct {
	ClinicID          string
	ActiveOnly        bool
	AppointmentTypeID string
}
