package booking

import (
	"context"
	"testing"
	"time"

	"dentflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlotsEmptyDay(t *testing.T) {
	loc := saoPaulo(t)
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()

	slots, err := GenerateSlots(&p, &typ, monday, nil, "", DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	first := slots[0]
	assert.Equal(t, time.Date(2024, 3, 11, 8, 15, 0, 0, loc), first.Start.In(loc))
	assert.Equal(t, time.Date(2024, 3, 11, 9, 15, 0, 0, loc), first.End.In(loc))
	assert.True(t, first.Available)
	assert.Equal(t, testProvider, first.ProviderID)
	assert.Equal(t, testType, first.AppointmentTypeID)

	last := slots[len(slots)-1]
	assert.Equal(t, time.Date(2024, 3, 11, 16, 45, 0, 0, loc), last.Start.In(loc))
	assert.Len(t, slots, 35)

	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 15*time.Minute, slots[i].Start.Sub(slots[i-1].Start))
	}
}

func TestGenerateSlotsSkipsBufferedNeighbours(t *testing.T) {
	loc := saoPaulo(t)
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()
	existing := []models.Appointment{{
		ID:                  "a-1",
		Status:              models.StatusConfirmed,
		ScheduledStart:      time.Date(2024, 3, 11, 10, 0, 0, 0, loc),
		ScheduledEnd:        time.Date(2024, 3, 11, 11, 0, 0, 0, loc),
		BufferBeforeMinutes: 15,
		BufferAfterMinutes:  15,
	}}

	slots, err := GenerateSlots(&p, &typ, monday, existing, "", DefaultOptions())
	require.NoError(t, err)

	starts := map[string]bool{}
	for _, s := range slots {
		starts[s.Start.In(loc).Format("15:04")] = true
	}
	assert.True(t, starts["08:45"], "ends at 09:45, exactly where the existing before-buffer starts")
	assert.False(t, starts["09:00"])
	assert.False(t, starts["10:30"])
	assert.False(t, starts["11:00"])
	assert.True(t, starts["11:15"], "starts where the existing after-buffer ends")
}

func TestGenerateSlotsExcludedAppointmentIsIgnored(t *testing.T) {
	loc := saoPaulo(t)
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()
	existing := []models.Appointment{{
		ID:             "a-1",
		Status:         models.StatusConfirmed,
		ScheduledStart: time.Date(2024, 3, 11, 10, 0, 0, 0, loc),
		ScheduledEnd:   time.Date(2024, 3, 11, 11, 0, 0, 0, loc),
	}}

	with, err := GenerateSlots(&p, &typ, monday, existing, "", DefaultOptions())
	require.NoError(t, err)
	without, err := GenerateSlots(&p, &typ, monday, existing, "a-1", DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, without, 35)
	assert.Less(t, len(with), len(without))
}

func TestGenerateSlotsNonWorkingDay(t *testing.T) {
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()
	sunday := Date{Year: 2024, Month: time.March, Day: 10}

	slots, err := GenerateSlots(&p, &typ, sunday, nil, "", DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestGenerateSlotsCandidateLimit(t *testing.T) {
	p := testProviderRecord(testProvider)
	p.WorkingHours[time.Monday] = models.DayHours{Start: "00:00", End: "23:59", IsWorking: true}
	p.BufferBeforeMinutes, p.BufferAfterMinutes = 0, 0
	typ := testTypeRecord()
	typ.DurationMinutes = 15

	opts := DefaultOptions()
	opts.SlotStep = 5 * time.Minute
	slots, err := GenerateSlots(&p, &typ, monday, nil, "", opts)
	require.NoError(t, err)
	assert.Len(t, slots, 200)
}

func TestGenerateSlotsZeroOptionsUseDefaults(t *testing.T) {
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()

	for name, opts := range map[string]Options{
		"zero":     {},
		"negative": {SlotStep: -time.Minute, CandidateLimit: 5},
	} {
		t.Run(name, func(t *testing.T) {
			slots, err := GenerateSlots(&p, &typ, monday, nil, "", opts)
			require.NoError(t, err)
			if opts.CandidateLimit > 0 {
				require.Len(t, slots, opts.CandidateLimit)
			} else {
				require.Len(t, slots, 35)
			}
			for i := 1; i < len(slots); i++ {
				assert.Equal(t, 15*time.Minute, slots[i].Start.Sub(slots[i-1].Start))
			}
		})
	}
}

func TestGenerateSlotsTypeBufferOverride(t *testing.T) {
	loc := saoPaulo(t)
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()
	zero := 0
	typ.BufferBeforeMinutes = &zero
	typ.BufferAfterMinutes = &zero

	slots, err := GenerateSlots(&p, &typ, monday, nil, "", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 11, 8, 0, 0, 0, loc), slots[0].Start.In(loc))
	assert.Equal(t, time.Date(2024, 3, 11, 17, 0, 0, 0, loc), slots[len(slots)-1].Start.In(loc))
}

func TestGenerateSlotsIsIdempotent(t *testing.T) {
	p := testProviderRecord(testProvider)
	typ := testTypeRecord()
	a, err := GenerateSlots(&p, &typ, monday, nil, "", DefaultOptions())
	require.NoError(t, err)
	b, err := GenerateSlots(&p, &typ, monday, nil, "", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGetAvailableSlotsSingleProvider(t *testing.T) {
	f := newFixture(t)
	f.seed("a-1", f.at(10, 0), models.StatusConfirmed)
	f.seed("a-2", f.at(14, 0), models.StatusCancelled)

	slots, err := f.svc.GetAvailableSlots(context.Background(), SlotQuery{
		ClinicID:          testClinic,
		ProviderID:        testProvider,
		AppointmentTypeID: testType,
		Date:              "2024-03-11",
	})
	require.NoError(t, err)
	for _, s := range slots {
		assert.False(t, s.Start.Before(f.at(11, 15)) && s.End.After(f.at(9, 45)), "slot %s overlaps the booked block", s.Start.In(f.loc))
	}
	assert.Contains(t, startsOf(slots, f.loc), "14:00", "cancelled appointments do not block")
}

func TestGetAvailableSlotsMergesProviders(t *testing.T) {
	f := newFixture(t)
	f.providers.byID["prov-bia"] = testProviderRecord("prov-bia")
	other := testProviderRecord("prov-caio")
	other.AppointmentTypeIDs = []string{"type-implant"}
	f.providers.byID["prov-caio"] = other
	inactive := testProviderRecord("prov-dani")
	inactive.Active = false
	f.providers.byID["prov-dani"] = inactive

	slots, err := f.svc.GetAvailableSlots(context.Background(), SlotQuery{
		ClinicID:          testClinic,
		AppointmentTypeID: testType,
		Date:              "2024-03-11",
	})
	require.NoError(t, err)
	require.Len(t, slots, 70)

	assert.Equal(t, "prov-ana", slots[0].ProviderID)
	assert.Equal(t, "prov-bia", slots[1].ProviderID)
	assert.True(t, slots[0].Start.Equal(slots[1].Start))
	for i := 1; i < len(slots); i++ {
		assert.False(t, slots[i].Start.Before(slots[i-1].Start))
	}
}

func TestGetAvailableSlotsErrors(t *testing.T) {
	f := newFixture(t)
	inactive := testTypeRecord()
	inactive.ID = "type-retired"
	inactive.Active = false
	f.types.byID[inactive.ID] = inactive
	ctx := context.Background()

	_, err := f.svc.GetAvailableSlots(ctx, SlotQuery{ClinicID: testClinic, AppointmentTypeID: "nope", Date: "2024-03-11"})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.GetAvailableSlots(ctx, SlotQuery{ClinicID: testClinic, AppointmentTypeID: "type-retired", Date: "2024-03-11"})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.svc.GetAvailableSlots(ctx, SlotQuery{ClinicID: testClinic, ProviderID: "ghost", AppointmentTypeID: testType, Date: "2024-03-11"})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "provider")

	_, err = f.svc.GetAvailableSlots(ctx, SlotQuery{ClinicID: testClinic, AppointmentTypeID: testType, Date: "11/03/2024"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.GetAvailableSlots(ctx, SlotQuery{ClinicID: testClinic, Date: "2024-03-11"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestGetAvailableSlotsNoEligibleProviders(t *testing.T) {
	f := newFixture(t)
	p := f.providers.byID[testProvider]
	p.AppointmentTypeIDs = []string{"type-implant"}
	f.providers.byID[testProvider] = p

	slots, err := f.svc.GetAvailableSlots(context.Background(), SlotQuery{
		ClinicID:          testClinic,
		AppointmentTypeID: testType,
		Date:              "2024-03-11",
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func startsOf(slots []models.TimeSlot, loc *time.Location) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.In(loc).Format("15:04"))
	}
	return out
}
