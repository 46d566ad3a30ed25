package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dentflow/database/repository"
	"dentflow/models"
	"dentflow/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DayQueryPadding widens day queries so buffers of neighbouring-day appointments are seen.
const DayQueryPadding = 12 * time.Hour

var tracer = otel.Tracer("dentflow/services/booking")

func (s *DefaultSchedulingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultSchedulingService) options() Options {
	return s.Options.withDefaults()
}

func (s *DefaultSchedulingService) location(p *models.Provider) (*time.Location, error) {
	tz := p.Timezone
	if tz == "" {
		tz = s.options().DefaultTimezone
	}
	return LoadLocation(tz)
}

// loadType fetches an appointment type. Inactive types are rejected only when requireActive is set.
func (s *DefaultSchedulingService) loadType(ctx context.Context, clinicID, id string, requireActive bool) (*models.AppointmentType, error) {
	t, err := s.Types.GetByID(ctx, clinicID, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && requireActive && !t.Active) {
		return nil, NotFound("appointment type")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// loadProvider fetches an active provider; missing and inactive are both NotFound.
func (s *DefaultSchedulingService) loadProvider(ctx context.Context, clinicID, id string) (*models.Provider, error) {
	p, err := s.Providers.GetByID(ctx, clinicID, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !p.Active) {
		return nil, NotFound("provider")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *DefaultSchedulingService) loadAppointment(ctx context.Context, clinicID, id string) (*models.Appointment, error) {
	a, err := s.Appointments.GetByID(ctx, clinicID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound("appointment")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// checkAvailability is the single-candidate form of slot generation. It must run inside
// the transaction that writes the appointment.
func (s *DefaultSchedulingService) checkAvailability(ctx context.Context, p *models.Provider, t *models.AppointmentType, start time.Time, excludeID string) (Interval, Buffers, error) {
	loc, err := s.location(p)
	if err != nil {
		return Interval{}, Buffers{}, err
	}
	buffers := EffectiveBuffers(t, p)
	proposed := Interval{Start: start, End: start.Add(minutes(t.DurationMinutes))}

	date := DateOf(start.In(loc))
	windowStart, windowEnd, working, err := workingWindow(p, date, loc)
	if err != nil {
		return Interval{}, Buffers{}, err
	}
	padded := proposed.Expand(buffers)
	if !working || padded.Start.Before(windowStart) || padded.End.After(windowEnd) {
		return Interval{}, Buffers{}, NewConflict("requested time is outside the provider's working hours")
	}

	from, to := DayBounds(date, loc)
	existing, err := s.Appointments.ListBlocking(ctx, p.ClinicID, p.ID, from.Add(-DayQueryPadding), to.Add(DayQueryPadding))
	if err != nil {
		return Interval{}, Buffers{}, err
	}
	if res := HasConflict(proposed, buffers, bookedIntervals(existing, excludeID), loc); res.Conflict {
		return Interval{}, Buffers{}, NewConflict(res.Reason)
	}
	return proposed, buffers, nil
}

// lockDay writes the provider-day document inside the current transaction.
func (s *DefaultSchedulingService) lockDay(ctx context.Context, p *models.Provider, start time.Time) error {
	loc, err := s.location(p)
	if err != nil {
		return err
	}
	return s.Appointments.LockProviderDay(ctx, p.ClinicID, p.ID, DateOf(start.In(loc)).String())
}

// maxTransactionAttempts bounds how often a transaction body is re-run after losing a
// write conflict to a concurrent writer.
const maxTransactionAttempts = 4

// inTransaction runs fn in a store transaction and re-runs it after a write conflict, so the
// availability re-check sees the concurrent writer's commit. Conflict errors returned by fn
// are final.
func (s *DefaultSchedulingService) inTransaction(ctx context.Context, op string, fn func(tc context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxTransactionAttempts; attempt++ {
		err = s.Appointments.WithTransaction(ctx, fn)
		if err == nil || !retryableStoreError(err) {
			return err
		}
		utils.GetLogger().Debug("retrying transaction after write conflict",
			zap.String("operation", op), zap.Int("attempt", attempt), zap.Error(err))
		s.Metrics.ObserveTransactionRetry(op)

		timer := time.NewTimer(time.Duration(attempt) * 5 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

func retryableStoreError(err error) bool {
	var se *SchedulingError
	if errors.As(err, &se) {
		return false
	}
	return repository.IsWriteConflict(err)
}

// withDayLock takes the distributed provider-day lock when a Locker is configured.
// The key uses the UTC date; the in-transaction provider-day write stays authoritative.
func (s *DefaultSchedulingService) withDayLock(ctx context.Context, clinicID, providerID string, start time.Time, fn func(ctx context.Context) error) error {
	if s.Locker == nil {
		return fn(ctx)
	}
	key := fmt.Sprintf("%s:%s:%s", clinicID, providerID, start.UTC().Format(dateLayout))
	return s.Locker.WithLock(ctx, key, fn)
}

// mapStoreError turns concurrency failures into Conflict and wraps infrastructure errors.
func mapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *SchedulingError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, utils.ErrScheduleLocked) {
		return NewConflict("the provider's schedule is being updated by another request, please retry")
	}
	if repository.IsWriteConflict(err) {
		return NewConflict("the time slot was taken by a concurrent booking, please choose another slot")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	if k := KindOf(err); k != "" {
		return string(k)
	}
	return "error"
}

// observe records metrics, logs the failure and closes the span of a finished operation.
func (s *DefaultSchedulingService) observe(span trace.Span, op string, started time.Time, err error) {
	defer span.End()
	s.Metrics.ObserveOperation(op, outcomeLabel(err), time.Since(started).Seconds())
	if err == nil {
		return
	}
	logger := utils.GetLogger()
	if KindOf(err) == "" {
		logger.Error("scheduling operation failed", zap.String("operation", op), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(attribute.String("scheduling.outcome", string(KindOf(err))))
	logger.Info("scheduling operation rejected", zap.String("operation", op), zap.String("reason", err.Error()))
}

func clinicAttr(clinicID string) attribute.KeyValue {
	return attribute.String("clinic.id", clinicID)
}

func (s *DefaultSchedulingService) GetAppointment(ctx context.Context, clinicID, appointmentID string) (*models.Appointment, error) {
	if clinicID == "" || appointmentID == "" {
		return nil, NewValidationError("clinicId and appointment id are required")
	}
	return s.loadAppointment(ctx, clinicID, appointmentID)
}

func (s *DefaultSchedulingService) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if filter.ClinicID == "" {
		return nil, NewValidationError("clinicId is required")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, NewValidationError("invalid status filter", string(filter.Status))
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, NewValidationError("from must be before to")
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.Appointments.List(ctx, filter)
}
