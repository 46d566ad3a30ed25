package models

import "time"

const (
	MinAppointmentDuration = 15
	MaxAppointmentDuration = 480
)

// AppointmentType is a bookable service with its duration and buffer policy.
type AppointmentType struct {
	ID                  string    `bson:"id" json:"id"`
	ClinicID            string    `bson:"clinicId" json:"clinicId"`
	Name                string    `bson:"name" json:"name"`
	DurationMinutes     int       `bson:"durationMinutes" json:"durationMinutes"`
	BufferBeforeMinutes *int      `bson:"bufferBeforeMinutes,omitempty" json:"bufferBeforeMinutes,omitempty"` // nil falls back to the provider default
	BufferAfterMinutes  *int      `bson:"bufferAfterMinutes,omitempty" json:"bufferAfterMinutes,omitempty"`
	RequiresApproval    bool      `bson:"requiresApproval" json:"requiresApproval"`
	Active              bool      `bson:"active" json:"active"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentTypeInput is the writable part of an appointment type.
type AppointmentTypeInput struct {
	Name                string `json:"name" binding:"required"`
	DurationMinutes     int    `json:"durationMinutes" binding:"required,gte=15,lte=480"`
	BufferBeforeMinutes *int   `json:"bufferBeforeMinutes" binding:"omitempty,gte=0,lte=240"`
	BufferAfterMinutes  *int   `json:"bufferAfterMinutes" binding:"omitempty,gte=0,lte=240"`
	RequiresApproval    bool   `json:"requiresApproval"`
	Active              *bool  `json:"active"`
}
