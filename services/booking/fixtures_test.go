package booking

import (
	"sync"
	"testing"
	"time"

	"dentflow/models"

	"github.com/stretchr/testify/require"
)

const (
	testClinic   = "clinic-1"
	testProvider = "prov-ana"
	testType     = "type-cleaning"
)

var monday = Date{Year: 2024, Month: time.March, Day: 11}

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return loc
}

func weekdays(start, end string) models.WorkingHours {
	var wh models.WorkingHours
	for d := time.Monday; d <= time.Friday; d++ {
		wh[d] = models.DayHours{Start: start, End: end, IsWorking: true}
	}
	return wh
}

func testProviderRecord(id string) models.Provider {
	return models.Provider{
		ID:                  id,
		ClinicID:            testClinic,
		Name:                "Dr. " + id,
		Timezone:            "America/Sao_Paulo",
		WorkingHours:        weekdays("08:00", "18:00"),
		BufferBeforeMinutes: 15,
		BufferAfterMinutes:  15,
		Active:              true,
	}
}

func testTypeRecord() models.AppointmentType {
	return models.AppointmentType{
		ID:              testType,
		ClinicID:        testClinic,
		Name:            "Cleaning",
		DurationMinutes: 60,
		Active:          true,
	}
}

// clock is a settable time source for the service.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc       *DefaultSchedulingService
	appts     *memAppointments
	providers *memProviders
	types     *memTypes
	events    *recordingEvents
	clock     *clock
	loc       *time.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		appts:     newMemAppointments(),
		providers: &memProviders{byID: map[string]models.Provider{testProvider: testProviderRecord(testProvider)}},
		types:     &memTypes{byID: map[string]models.AppointmentType{testType: testTypeRecord()}},
		events:    &recordingEvents{},
		clock:     &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		loc:       saoPaulo(t),
	}
	f.svc = &DefaultSchedulingService{
		Appointments: f.appts,
		Providers:    f.providers,
		Types:        f.types,
		Events:       f.events,
		Options:      DefaultOptions(),
		Now:          f.clock.Now,
	}
	return f
}

// at is a wall-clock time on the test Monday in São Paulo.
func (f *fixture) at(hour, minute int) time.Time {
	return time.Date(monday.Year, monday.Month, monday.Day, hour, minute, 0, 0, f.loc)
}

func (f *fixture) request(start time.Time) BookingRequest {
	return BookingRequest{
		ClinicID:          testClinic,
		PatientID:         "patient-1",
		ProviderID:        testProvider,
		AppointmentTypeID: testType,
		ScheduledStart:    start.Format(time.RFC3339),
		CreatedBy:         "staff-1",
	}
}

// seed stores a confirmed 60-minute appointment with 15-minute buffers.
func (f *fixture) seed(id string, start time.Time, status models.AppointmentStatus) models.Appointment {
	a := models.Appointment{
		ID:                  id,
		ClinicID:            testClinic,
		PatientID:           "patient-" + id,
		ProviderID:          testProvider,
		AppointmentTypeID:   testType,
		ScheduledStart:      start.UTC(),
		ScheduledEnd:        start.Add(time.Hour).UTC(),
		BufferBeforeMinutes: 15,
		BufferAfterMinutes:  15,
		Status:              status,
		Priority:            models.PriorityRoutine,
		RescheduleHistory:   []models.RescheduleEntry{},
	}
	f.appts.put(a)
	return a
}
