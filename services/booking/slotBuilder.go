package booking

import (
	"context"
	"sort"
	"time"

	"dentflow/models"

	"golang.org/x/sync/errgroup"
)

// providerFanOut bounds concurrent per-provider loads in a clinic-wide search.
const providerFanOut = 4

// GenerateSlots walks the provider's working window on date and returns the visible
// interval of every candidate that clears existing appointments. It does no I/O.
// Unset options take their defaults.
func GenerateSlots(p *models.Provider, t *models.AppointmentType, date Date, existing []models.Appointment, excludeID string, opts Options) ([]models.TimeSlot, error) {
	opts = opts.withDefaults()
	slots := []models.TimeSlot{}

	tz := p.Timezone
	if tz == "" {
		tz = opts.DefaultTimezone
	}
	loc, err := LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	windowStart, windowEnd, working, err := workingWindow(p, date, loc)
	if err != nil || !working {
		return slots, err
	}

	buffers := EffectiveBuffers(t, p)
	duration := minutes(t.DurationMinutes)
	total := buffers.Before + duration + buffers.After
	booked := bookedIntervals(existing, excludeID)

	candidates := 0
	for current := windowStart; !current.Add(total).After(windowEnd); current = current.Add(opts.SlotStep) {
		if candidates >= opts.CandidateLimit {
			break
		}
		candidates++

		visible := Interval{Start: current.Add(buffers.Before), End: current.Add(buffers.Before + duration)}
		if HasConflict(visible, buffers, booked, loc).Conflict {
			continue
		}
		slots = append(slots, models.TimeSlot{
			Start:             visible.Start,
			End:               visible.End,
			Available:         true,
			ProviderID:        p.ID,
			AppointmentTypeID: t.ID,
		})
	}
	return slots, nil
}

// GetAvailableSlots is a best-effort read; bookings re-check inside their transaction.
func (s *DefaultSchedulingService) GetAvailableSlots(ctx context.Context, q SlotQuery) (slots []models.TimeSlot, err error) {
	ctx, span := tracer.Start(ctx, "booking.GetAvailableSlots")
	span.SetAttributes(clinicAttr(q.ClinicID))
	started := time.Now()
	defer func() {
		if err == nil {
			s.Metrics.ObserveSlotQuery(time.Since(started).Seconds(), len(slots))
		}
		if KindOf(err) == "" && err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	var problems validationErrors
	problems.require(q.ClinicID, "clinicId")
	problems.require(q.AppointmentTypeID, "appointmentTypeId")
	problems.require(q.Date, "date")
	if err := problems.err(); err != nil {
		return nil, err
	}
	date, err := ParseDate(q.Date)
	if err != nil {
		return nil, err
	}

	apptType, err := s.loadType(ctx, q.ClinicID, q.AppointmentTypeID, true)
	if err != nil {
		return nil, err
	}

	if q.ProviderID != "" {
		provider, err := s.loadProvider(ctx, q.ClinicID, q.ProviderID)
		if err != nil {
			return nil, err
		}
		return s.providerSlots(ctx, provider, apptType, date, q.ExcludeAppointmentID)
	}

	providers, err := s.Providers.List(ctx, models.ProviderFilter{
		ClinicID:          q.ClinicID,
		ActiveOnly:        true,
		AppointmentTypeID: apptType.ID,
	})
	if err != nil {
		return nil, err
	}

	perProvider := make([][]models.TimeSlot, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(providerFanOut)
	for i := range providers {
		p := &providers[i]
		if !p.Active || !p.Offers(apptType.ID) {
			continue
		}
		g.Go(func() error {
			found, err := s.providerSlots(gctx, p, apptType, date, q.ExcludeAppointmentID)
			if err != nil {
				return err
			}
			perProvider[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeSlots(perProvider), nil
}

func (s *DefaultSchedulingService) providerSlots(ctx context.Context, p *models.Provider, t *models.AppointmentType, date Date, excludeID string) ([]models.TimeSlot, error) {
	loc, err := s.location(p)
	if err != nil {
		return nil, err
	}
	if _, _, working, err := workingWindow(p, date, loc); err != nil || !working {
		return []models.TimeSlot{}, err
	}
	from, to := DayBounds(date, loc)
	existing, err := s.Appointments.ListBlocking(ctx, p.ClinicID, p.ID, from.Add(-DayQueryPadding), to.Add(DayQueryPadding))
	if err != nil {
		return nil, err
	}
	return GenerateSlots(p, t, date, existing, excludeID, s.options())
}

// mergeSlots flattens per-provider results ordered by start, then provider id.
func mergeSlots(groups [][]models.TimeSlot) []models.TimeSlot {
	merged := []models.TimeSlot{}
	for _, g := range groups {
		merged = append(merged, g...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Start.Equal(merged[j].Start) {
			return merged[i].Start.Before(merged[j].Start)
		}
		return merged[i].ProviderID < merged[j].ProviderID
	})
	return merged
}
