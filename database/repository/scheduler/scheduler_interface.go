package schedulerRepo

import (
	"context"
	"time"

	"dentflow/models"
)

// AppointmentRepository persists appointments and owns the transaction boundary
// used by booking, reschedule, cancel and status transitions.
type AppointmentRepository interface {
	// WithTransaction runs fn in one transaction. fn must use the context it receives.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// LockProviderDay writes the provider-day document so concurrent transactions
	// touching the same day conflict.
	LockProviderDay(ctx context.Context, clinicID, providerID, day string) error

	GetByID(ctx context.Context, clinicID, id string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	// ListBlocking returns non-cancelled, non-no-show appointments of a provider overlapping [from, to).
	ListBlocking(ctx context.Context, clinicID, providerID string, from, to time.Time) ([]models.Appointment, error)

	Insert(ctx context.Context, appt *models.Appointment) error
	// UpdateStatus writes the status, timeline, derived and cancellation fields.
	UpdateStatus(ctx context.Context, appt *models.Appointment) error
	// AppendReschedule pushes entry onto the history and writes the new schedule fields.
	AppendReschedule(ctx context.Context, appt *models.Appointment, entry models.RescheduleEntry) error

	EnsureIndexes(ctx context.Context) error
}
