package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dentflow/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	calls []enqueued
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.calls = append(f.calls, enqueued{task: task, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "id", Type: task.Type()}, nil
}

func optionValue(opts []asynq.Option, kind asynq.OptionType) (interface{}, bool) {
	for _, o := range opts {
		if o.Type() == kind {
			return o.Value(), true
		}
	}
	return nil, false
}

func testAppointment() *models.Appointment {
	return &models.Appointment{
		ID:             "appt-1",
		ClinicID:       "clinic-1",
		PatientID:      "patient-1",
		ProviderID:     "prov-1",
		Status:         models.StatusConfirmed,
		ScheduledStart: time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC),
	}
}

func TestPublishEncodesEvent(t *testing.T) {
	q := &fakeEnqueuer{}
	p := NewAsynqPublisher(q)
	a := testAppointment()

	err := p.Publish(context.Background(), models.AppointmentEvent{
		Type:           models.EventAppointmentBooked,
		ClinicID:       a.ClinicID,
		AppointmentID:  a.ID,
		Status:         a.Status,
		ScheduledStart: a.ScheduledStart,
	})
	require.NoError(t, err)
	require.Len(t, q.calls, 1)

	call := q.calls[0]
	assert.Equal(t, TypeAppointmentEvent, call.task.Type())
	var decoded models.AppointmentEvent
	require.NoError(t, json.Unmarshal(call.task.Payload(), &decoded))
	assert.Equal(t, models.EventAppointmentBooked, decoded.Type)
	assert.Equal(t, "appt-1", decoded.AppointmentID)
	assert.True(t, decoded.ScheduledStart.Equal(a.ScheduledStart))

	queue, ok := optionValue(call.opts, asynq.QueueOpt)
	require.True(t, ok)
	assert.Equal(t, QueueDefault, queue)
}

func TestScheduleReminder(t *testing.T) {
	q := &fakeEnqueuer{}
	p := NewAsynqPublisher(q)
	a := testAppointment()
	fireAt := a.ScheduledStart.Add(-24 * time.Hour)

	require.NoError(t, p.ScheduleReminder(context.Background(), a, fireAt))
	require.Len(t, q.calls, 1)
	call := q.calls[0]
	assert.Equal(t, TypeAppointmentReminder, call.task.Type())

	var payload ReminderPayload
	require.NoError(t, json.Unmarshal(call.task.Payload(), &payload))
	assert.Equal(t, "clinic-1", payload.ClinicID)
	assert.Equal(t, "appt-1", payload.AppointmentID)
	assert.True(t, payload.ScheduledStart.Equal(a.ScheduledStart))

	at, ok := optionValue(call.opts, asynq.ProcessAtOpt)
	require.True(t, ok)
	assert.True(t, at.(time.Time).Equal(fireAt))

	id, ok := optionValue(call.opts, asynq.TaskIDOpt)
	require.True(t, ok)
	assert.Equal(t, ReminderTaskID("appt-1", a.ScheduledStart), id)

	queue, _ := optionValue(call.opts, asynq.QueueOpt)
	assert.Equal(t, QueueReminder, queue)
}

func TestReminderTaskIDDependsOnStart(t *testing.T) {
	start := time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "reminder:appt-1:1710162000", ReminderTaskID("appt-1", start))
	assert.NotEqual(t, ReminderTaskID("appt-1", start), ReminderTaskID("appt-1", start.Add(time.Hour)))
}

func TestScheduleReminderIgnoresDuplicates(t *testing.T) {
	a := testAppointment()

	q := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
	assert.NoError(t, NewAsynqPublisher(q).ScheduleReminder(context.Background(), a, time.Now().Add(time.Hour)))

	q = &fakeEnqueuer{err: errors.New("redis: connection refused")}
	assert.Error(t, NewAsynqPublisher(q).ScheduleReminder(context.Background(), a, time.Now().Add(time.Hour)))
}

func TestPublishSurfacesEnqueueErrors(t *testing.T) {
	q := &fakeEnqueuer{err: errors.New("redis: connection refused")}
	err := NewAsynqPublisher(q).Publish(context.Background(), models.AppointmentEvent{Type: models.EventAppointmentCancelled})
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.EventAppointmentCancelled)
}
