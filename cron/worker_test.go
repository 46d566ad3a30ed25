package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"dentflow/database/repository"
	providerRepo "dentflow/database/repository/provider"
	schedulerRepo "dentflow/database/repository/scheduler"
	"dentflow/models"
	"dentflow/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointments struct {
	schedulerRepo.AppointmentRepository
	appt *models.Appointment
}

func (s *stubAppointments) GetByID(_ context.Context, clinicID, id string) (*models.Appointment, error) {
	if s.appt == nil || s.appt.ID != id || s.appt.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	a := *s.appt
	return &a, nil
}

type stubProviders struct {
	providerRepo.ProviderRepository
	p *models.Provider
}

func (s *stubProviders) GetByID(_ context.Context, _, id string) (*models.Provider, error) {
	if s.p == nil || s.p.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.p, nil
}

type recordingNotifier struct {
	sent []models.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

var start = time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC)

func deps(appt *models.Appointment) (WorkerDeps, *recordingNotifier) {
	n := &recordingNotifier{}
	return WorkerDeps{
		Appointments: &stubAppointments{appt: appt},
		Providers:    &stubProviders{p: &models.Provider{ID: "prov-1", Timezone: "America/Sao_Paulo"}},
		Notifier:     n,
	}, n
}

func reminderTask(t *testing.T, scheduledStart time.Time) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(tasks.ReminderPayload{ClinicID: "clinic-1", AppointmentID: "appt-1", ScheduledStart: scheduledStart})
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeAppointmentReminder, b)
}

func confirmed() *models.Appointment {
	return &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		PatientID:      "patient-1",
		ProviderID:     "prov-1",
		Status:         models.StatusConfirmed,
		ScheduledStart: start,
	}
}

func TestReminderDelivered(t *testing.T) {
	d, n := deps(confirmed())

	require.NoError(t, handleReminderTask(d)(context.Background(), reminderTask(t, start)))
	require.Len(t, n.sent, 1)
	assert.Equal(t, models.EventAppointmentReminder, n.sent[0].Kind)
	assert.Contains(t, n.sent[0].Body, "10:00", "rendered in the provider's zone")
}

func TestReminderSkippedWhenStale(t *testing.T) {
	moved := confirmed()
	moved.ScheduledStart = start.Add(2 * time.Hour)
	cancelled := confirmed()
	cancelled.Status = models.StatusCancelled

	for name, appt := range map[string]*models.Appointment{
		"rescheduled": moved,
		"cancelled":   cancelled,
		"missing":     nil,
	} {
		t.Run(name, func(t *testing.T) {
			d, n := deps(appt)
			require.NoError(t, handleReminderTask(d)(context.Background(), reminderTask(t, start)))
			assert.Empty(t, n.sent)
		})
	}
}

func TestReminderBadPayloadSkipsRetry(t *testing.T) {
	d, _ := deps(confirmed())
	err := handleReminderTask(d)(context.Background(), asynq.NewTask(tasks.TypeAppointmentReminder, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEventDelivered(t *testing.T) {
	d, n := deps(nil)
	prev := start.Add(-time.Hour)
	b, err := json.Marshal(models.AppointmentEvent{
		Type:           models.EventAppointmentRescheduled,
		ClinicID:       "clinic-1",
		AppointmentID:  "appt-1",
		ProviderID:     "prov-1",
		Status:         models.StatusScheduled,
		ScheduledStart: start,
		PreviousStart:  &prev,
	})
	require.NoError(t, err)

	require.NoError(t, handleEventTask(d)(context.Background(), asynq.NewTask(tasks.TypeAppointmentEvent, b)))
	require.Len(t, n.sent, 1)
	assert.Equal(t, "Appointment rescheduled", n.sent[0].Title)
}

func TestEventNotifierFailureRetries(t *testing.T) {
	d, n := deps(nil)
	n.err = errors.New("smtp unavailable")
	b, _ := json.Marshal(models.AppointmentEvent{Type: models.EventAppointmentBooked, AppointmentID: "appt-1"})

	err := handleEventTask(d)(context.Background(), asynq.NewTask(tasks.TypeAppointmentEvent, b))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}
