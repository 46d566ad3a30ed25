package booking

import (
	"context"
	"testing"
	"time"

	"dentflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []models.AppointmentStatus{
		models.StatusScheduled, models.StatusConfirmed, models.StatusCheckedIn,
		models.StatusInProgress, models.StatusCompleted, models.StatusCancelled, models.StatusNoShow,
	}
	allowed := map[[2]models.AppointmentStatus]bool{
		{models.StatusScheduled, models.StatusConfirmed}:  true,
		{models.StatusConfirmed, models.StatusCheckedIn}:  true,
		{models.StatusCheckedIn, models.StatusInProgress}: true,
		{models.StatusInProgress, models.StatusCompleted}: true,
	}
	for _, from := range all {
		if !from.IsTerminal() {
			allowed[[2]models.AppointmentStatus{from, models.StatusCancelled}] = true
			allowed[[2]models.AppointmentStatus{from, models.StatusNoShow}] = true
		}
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.AppointmentStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestApplyTransitionStampsTimeline(t *testing.T) {
	a := &models.Appointment{Status: models.StatusConfirmed}
	checkIn := time.Date(2024, 3, 11, 12, 50, 0, 0, time.UTC)

	require.NoError(t, applyTransition(a, models.StatusCheckedIn, checkIn))
	require.NotNil(t, a.CheckedInAt)
	assert.Nil(t, a.WaitTimeMinutes)
	assert.Nil(t, a.DurationMinutes)

	require.NoError(t, applyTransition(a, models.StatusInProgress, checkIn.Add(12*time.Minute)))
	require.NotNil(t, a.WaitTimeMinutes)
	assert.Equal(t, 12, *a.WaitTimeMinutes)
	assert.Nil(t, a.DurationMinutes)

	require.NoError(t, applyTransition(a, models.StatusCompleted, checkIn.Add(57*time.Minute)))
	require.NotNil(t, a.ActualEnd)
	require.NotNil(t, a.CompletedAt)
	require.NotNil(t, a.DurationMinutes)
	assert.Equal(t, 45, *a.DurationMinutes)
	assert.Equal(t, models.StatusCompleted, a.Status)
}

func TestApplyTransitionRejectsIllegalMoves(t *testing.T) {
	a := &models.Appointment{Status: models.StatusCompleted}
	err := applyTransition(a, models.StatusCancelled, time.Now())
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.Equal(t, models.StatusCompleted, a.Status)

	a = &models.Appointment{Status: models.StatusScheduled}
	err = applyTransition(a, models.StatusInProgress, time.Now())
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.Nil(t, a.ActualStart)
}

func TestRecomputeDerivedClearsWithoutEndpoints(t *testing.T) {
	start := time.Date(2024, 3, 11, 13, 0, 0, 0, time.UTC)
	stale := 99
	a := &models.Appointment{ActualStart: &start, DurationMinutes: &stale, WaitTimeMinutes: &stale}

	RecomputeDerived(a)
	assert.Nil(t, a.DurationMinutes)
	assert.Nil(t, a.WaitTimeMinutes)
}

func TestTransitionThroughVisit(t *testing.T) {
	f := newFixture(t)
	f.seed("a-1", f.at(10, 0), models.StatusScheduled)
	f.clock.now = f.at(9, 50).UTC()
	ctx := context.Background()

	steps := []struct {
		to      models.AppointmentStatus
		advance time.Duration
	}{
		{models.StatusConfirmed, 0},
		{models.StatusCheckedIn, 5 * time.Minute},
		{models.StatusInProgress, 10 * time.Minute},
		{models.StatusCompleted, 50 * time.Minute},
	}
	var last *models.Appointment
	for _, step := range steps {
		f.clock.advance(step.advance)
		out, err := f.svc.Transition(ctx, testClinic, "a-1", step.to)
		require.NoError(t, err, string(step.to))
		last = out.Appointment
	}

	stored := f.appts.stored("a-1")
	assert.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.WaitTimeMinutes)
	require.NotNil(t, stored.DurationMinutes)
	assert.Equal(t, 10, *stored.WaitTimeMinutes)
	assert.Equal(t, 50, *stored.DurationMinutes)
	assert.Equal(t, stored.CompletedAt, last.CompletedAt)
	assert.Equal(t, []string{
		EventStatusChanged, EventStatusChanged, EventStatusChanged, EventStatusChanged,
	}, f.events.types())
}

func TestTransitionRejections(t *testing.T) {
	f := newFixture(t)
	f.seed("a-1", f.at(10, 0), models.StatusCompleted)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, testClinic, "a-1", models.StatusCheckedIn)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.Equal(t, models.StatusCompleted, f.appts.stored("a-1").Status)

	_, err = f.svc.Transition(ctx, testClinic, "a-1", "teleported")
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.svc.Transition(ctx, testClinic, "missing", models.StatusConfirmed)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestTransitionToNoShowReleasesSlot(t *testing.T) {
	f := newFixture(t)
	f.seed("a-1", f.at(10, 0), models.StatusConfirmed)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, testClinic, "a-1", models.StatusNoShow)
	require.NoError(t, err)

	_, err = f.svc.Book(ctx, f.request(f.at(10, 0)))
	assert.NoError(t, err)
}
