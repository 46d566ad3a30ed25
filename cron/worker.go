package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dentflow/config"
	"dentflow/database/repository"
	providerRepo "dentflow/database/repository/provider"
	schedulerRepo "dentflow/database/repository/scheduler"
	"dentflow/models"
	"dentflow/services/notification"
	"dentflow/services/tasks"
	"dentflow/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// WorkerDeps are the collaborators of the notification worker.
type WorkerDeps struct {
	Appointments schedulerRepo.AppointmentRepository
	Providers    providerRepo.ProviderRepository
	Notifier     notification.Notifier
}

// RedisOpt returns the asynq connection for the queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes appointment tasks to their handlers.
func NewMux(d WorkerDeps) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAppointmentEvent, handleEventTask(d))
	mux.HandleFunc(tasks.TypeAppointmentReminder, handleReminderTask(d))
	return mux
}

// InitNotificationWorker runs the async worker in background and returns the server
// so the caller can shut it down.
func InitNotificationWorker(d WorkerDeps) *asynq.Server {
	logger := utils.GetLogger()
	concurrency := config.AppConfig.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueReminder: 2,
				tasks.QueueDefault:  1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewMux(d)

	go func() {
		logger.Info("starting notification worker", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("notification worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("notification worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleEventTask(d WorkerDeps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var e models.AppointmentEvent
		if err := json.Unmarshal(task.Payload(), &e); err != nil {
			utils.GetLogger().Error("invalid appointment event payload", zap.Error(err))
			return fmt.Errorf("decode appointment event: %v: %w", err, asynq.SkipRetry)
		}
		n := notification.FromEvent(e, providerLocation(ctx, d, e.ClinicID, e.ProviderID))
		if err := d.Notifier.Notify(ctx, n); err != nil {
			return fmt.Errorf("notify %s for appointment %s: %w", e.Type, e.AppointmentID, err)
		}
		return nil
	}
}

func handleReminderTask(d WorkerDeps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()
		var p tasks.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return fmt.Errorf("decode reminder: %v: %w", err, asynq.SkipRetry)
		}

		appt, err := d.Appointments.GetByID(ctx, p.ClinicID, p.AppointmentID)
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("skipping reminder for missing appointment", zap.String("appointmentID", p.AppointmentID))
			return nil
		}
		if err != nil {
			return err
		}
		if !remindable(appt, p) {
			logger.Info("skipping stale reminder",
				zap.String("appointmentID", appt.ID),
				zap.String("status", string(appt.Status)),
				zap.Time("remindedStart", p.ScheduledStart),
				zap.Time("currentStart", appt.ScheduledStart))
			return nil
		}

		n := notification.Reminder(appt, providerLocation(ctx, d, appt.ClinicID, appt.ProviderID))
		return d.Notifier.Notify(ctx, n)
	}
}

// remindable is false once the appointment moved or left the pre-visit states.
func remindable(a *models.Appointment, p tasks.ReminderPayload) bool {
	if a.Status != models.StatusScheduled && a.Status != models.StatusConfirmed {
		return false
	}
	return a.ScheduledStart.Equal(p.ScheduledStart)
}

// providerLocation renders times in the provider's zone when it can be loaded.
func providerLocation(ctx context.Context, d WorkerDeps, clinicID, providerID string) *time.Location {
	if d.Providers == nil || providerID == "" {
		return nil
	}
	p, err := d.Providers.GetByID(ctx, clinicID, providerID)
	if err != nil || p.Timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil
	}
	return loc
}
