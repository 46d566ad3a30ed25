package booking

import (
	"time"

	"dentflow/models"
)

// Buffers are the dead minutes kept clear around an appointment.
type Buffers struct {
	Before time.Duration
	After  time.Duration
}

// EffectiveBuffers picks the appointment-type override when present, else the provider default.
func EffectiveBuffers(t *models.AppointmentType, p *models.Provider) Buffers {
	before, after := p.BufferBeforeMinutes, p.BufferAfterMinutes
	if t.BufferBeforeMinutes != nil {
		before = *t.BufferBeforeMinutes
	}
	if t.BufferAfterMinutes != nil {
		after = *t.BufferAfterMinutes
	}
	return Buffers{Before: minutes(before), After: minutes(after)}
}

// ValidateWorkingHours checks the provider working-hours invariant and the timezone.
func ValidateWorkingHours(p *models.Provider) error {
	var problems validationErrors
	if _, err := LoadLocation(p.Timezone); err != nil {
		problems.add("timezone %q is not a valid IANA zone", p.Timezone)
	}
	if p.BufferBeforeMinutes < 0 || p.BufferAfterMinutes < 0 {
		problems.add("buffers must not be negative")
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		h := p.WorkingHours.For(day)
		if !h.IsWorking {
			continue
		}
		if h.Start == "" || h.End == "" {
			problems.add("%s: start and end are required on working days", day)
			continue
		}
		start, err := ParseClock(h.Start)
		if err != nil {
			problems.add("%s: %v", day, err)
			continue
		}
		end, err := ParseClock(h.End)
		if err != nil {
			problems.add("%s: %v", day, err)
			continue
		}
		if start >= end {
			problems.add("%s: start %s must be before end %s", day, h.Start, h.End)
		}
	}
	return problems.err()
}

// ValidateAppointmentType checks duration and buffer bounds.
func ValidateAppointmentType(t *models.AppointmentType) error {
	var problems validationErrors
	problems.require(t.Name, "name")
	if t.DurationMinutes < models.MinAppointmentDuration || t.DurationMinutes > models.MaxAppointmentDuration {
		problems.add("durationMinutes must be between %d and %d", models.MinAppointmentDuration, models.MaxAppointmentDuration)
	}
	if (t.BufferBeforeMinutes != nil && *t.BufferBeforeMinutes < 0) || (t.BufferAfterMinutes != nil && *t.BufferAfterMinutes < 0) {
		problems.add("buffers must not be negative")
	}
	return problems.err()
}

// workingWindow resolves the provider's window on date. ok is false when the provider
// does not work that day.
func workingWindow(p *models.Provider, date Date, loc *time.Location) (start, end time.Time, ok bool, err error) {
	h := p.WorkingHours.For(date.Weekday())
	if !h.IsWorking || h.Start == "" || h.End == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if start, err = resolveIn(date, h.Start, loc); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if end, err = resolveIn(date, h.End, loc); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, end, start.Before(end), nil
}
