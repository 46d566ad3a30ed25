package booking

import (
	"fmt"
	"time"

	"dentflow/models"
)

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Expand widens the interval by the given buffers.
func (i Interval) Expand(b Buffers) Interval {
	return Interval{Start: i.Start.Add(-b.Before), End: i.End.Add(b.After)}
}

// BookedInterval is an existing appointment with the buffers it was booked with.
type BookedInterval struct {
	AppointmentID string
	Interval
	Buffers Buffers
}

// ConflictResult is the outcome of HasConflict.
type ConflictResult struct {
	Conflict      bool
	Reason        string
	AppointmentID string
}

// HasConflict tests a proposed appointment against existing ones.
//
// Each side is padded by its own buffers and compared against the other side
// unpadded, so neighbours need a gap of the larger facing buffer. Endpoints that
// only touch never conflict. loc is used to render the reason and may be nil.
func HasConflict(proposed Interval, buffers Buffers, existing []BookedInterval, loc *time.Location) ConflictResult {
	padded := proposed.Expand(buffers)
	for _, e := range existing {
		if padded.Overlaps(e.Interval) || proposed.Overlaps(e.Expand(e.Buffers)) {
			start := e.Start
			if loc != nil {
				start = start.In(loc)
			}
			return ConflictResult{
				Conflict:      true,
				AppointmentID: e.AppointmentID,
				Reason:        fmt.Sprintf("time slot conflicts with an existing appointment at %s", start.Format("2006-01-02 15:04")),
			}
		}
	}
	return ConflictResult{}
}

// bookedIntervals converts blocking appointments, skipping excludeID.
func bookedIntervals(appts []models.Appointment, excludeID string) []BookedInterval {
	out := make([]BookedInterval, 0, len(appts))
	for _, a := range appts {
		if a.ID == excludeID || !a.Status.BlocksSchedule() {
			continue
		}
		out = append(out, BookedInterval{
			AppointmentID: a.ID,
			Interval:      Interval{Start: a.ScheduledStart, End: a.ScheduledEnd},
			Buffers:       Buffers{Before: minutes(a.BufferBeforeMinutes), After: minutes(a.BufferAfterMinutes)},
		})
	}
	return out
}
