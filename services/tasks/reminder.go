package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dentflow/models"

	"github.com/hibiken/asynq"
)

const (
	TypeAppointmentEvent    = "appointment:event"
	TypeAppointmentReminder = "appointment:reminder"

	QueueDefault  = "default"
	QueueReminder = "reminders"
)

// ReminderPayload names the appointment and the start it was scheduled for.
type ReminderPayload struct {
	ClinicID       string    `json:"clinicId"`
	AppointmentID  string    `json:"appointmentId"`
	ScheduledStart time.Time `json:"scheduledStart"`
}

func NewEventTask(event models.AppointmentEvent) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentEvent, b)
	opts := []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(5)}
	return task, opts, nil
}

func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.Queue(QueueReminder),
		asynq.TaskID(ReminderTaskID(payload.AppointmentID, payload.ScheduledStart)),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ReminderTaskID is unique per appointment start, so a reschedule queues a fresh reminder
// and a retry of the same booking does not queue a duplicate.
func ReminderTaskID(appointmentID string, start time.Time) string {
	return fmt.Sprintf("reminder:%s:%d", appointmentID, start.Unix())
}

// Enqueuer is the subset of *asynq.Client the publisher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher queues appointment events and reminders on Redis.
type AsynqPublisher struct {
	Client Enqueuer
}

func NewAsynqPublisher(client Enqueuer) *AsynqPublisher {
	return &AsynqPublisher{Client: client}
}

func (p *AsynqPublisher) Publish(ctx context.Context, event models.AppointmentEvent) error {
	task, opts, err := NewEventTask(event)
	if err != nil {
		return fmt.Errorf("failed to build event task: %w", err)
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", event.Type, err)
	}
	return nil
}

func (p *AsynqPublisher) ScheduleReminder(ctx context.Context, appt *models.Appointment, fireAt time.Time) error {
	task, opts, err := NewReminderTask(ReminderPayload{
		ClinicID:       appt.ClinicID,
		AppointmentID:  appt.ID,
		ScheduledStart: appt.ScheduledStart,
	}, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	_, err = p.Client.EnqueueContext(ctx, task, opts...)
	if err != nil && !isDuplicateTask(err) {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	return nil
}

func isDuplicateTask(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}
