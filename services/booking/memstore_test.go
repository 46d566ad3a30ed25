package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dentflow/database/repository"
	"dentflow/models"
)

// memAppointments is an in-memory AppointmentRepository with snapshot transactions.
// A transaction reads from a copy taken at its start and buffers its writes. Commit
// fails with ErrWriteConflict when another transaction committed a write to the same
// provider-day or appointment in the meantime, which is how Mongo treats them.
type memAppointments struct {
	mu     sync.RWMutex
	byID   map[string]models.Appointment
	dayVer map[string]int
	docVer map[string]int
	failOn string // operation name that returns an infrastructure error

	// beforeWrite runs inside a transaction after its reads, before its first write.
	beforeWrite func()
	commits     int
	conflicts   int
}

type txKey struct{}

// memTx is the private view of one transaction.
type memTx struct {
	view    map[string]models.Appointment
	writes  map[string]models.Appointment
	dayBase map[string]int
	docBase map[string]int
	days    map[string]bool
}

func newMemAppointments() *memAppointments {
	return &memAppointments{
		byID:   map[string]models.Appointment{},
		dayVer: map[string]int{},
		docVer: map[string]int{},
	}
}

func cloneAppointment(a models.Appointment) models.Appointment {
	a.RescheduleHistory = append([]models.RescheduleEntry(nil), a.RescheduleHistory...)
	return a
}

func dayKey(clinicID, providerID, day string) string {
	return clinicID + ":" + providerID + ":" + day
}

func (m *memAppointments) fail(op string) error {
	if m.failOn == op {
		return fmt.Errorf("%s: connection reset", op)
	}
	return nil
}

func txFrom(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey{}).(*memTx)
	return tx
}

func (m *memAppointments) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.RLock()
	tx := &memTx{
		view:    make(map[string]models.Appointment, len(m.byID)),
		writes:  map[string]models.Appointment{},
		dayBase: make(map[string]int, len(m.dayVer)),
		docBase: make(map[string]int, len(m.docVer)),
		days:    map[string]bool{},
	}
	for k, v := range m.byID {
		tx.view[k] = cloneAppointment(v)
	}
	for k, v := range m.dayVer {
		tx.dayBase[k] = v
	}
	for k, v := range m.docVer {
		tx.docBase[k] = v
	}
	m.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *memAppointments) commit(tx *memTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range tx.days {
		if m.dayVer[key] != tx.dayBase[key] {
			m.conflicts++
			return fmt.Errorf("commit provider day %s: %w", key, repository.ErrWriteConflict)
		}
	}
	for id := range tx.writes {
		if m.docVer[id] != tx.docBase[id] {
			m.conflicts++
			return fmt.Errorf("commit appointment %s: %w", id, repository.ErrWriteConflict)
		}
	}
	for key := range tx.days {
		m.dayVer[key]++
	}
	for id, a := range tx.writes {
		m.byID[id] = a
		m.docVer[id]++
	}
	m.commits++
	return nil
}

// write stores a inside the caller's transaction, or directly when there is none.
func (m *memAppointments) write(ctx context.Context, a models.Appointment) {
	if tx := txFrom(ctx); tx != nil {
		if m.beforeWrite != nil {
			m.beforeWrite()
		}
		tx.view[a.ID] = cloneAppointment(a)
		tx.writes[a.ID] = cloneAppointment(a)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[a.ID] = cloneAppointment(a)
	m.docVer[a.ID]++
}

// snapshot returns the appointments visible to ctx. The caller must not mutate it.
func (m *memAppointments) snapshot(ctx context.Context) (map[string]models.Appointment, func()) {
	if tx := txFrom(ctx); tx != nil {
		return tx.view, func() {}
	}
	m.mu.RLock()
	return m.byID, m.mu.RUnlock
}

func (m *memAppointments) LockProviderDay(ctx context.Context, clinicID, providerID, day string) error {
	if err := m.fail("lockDay"); err != nil {
		return err
	}
	key := dayKey(clinicID, providerID, day)
	if tx := txFrom(ctx); tx != nil {
		tx.days[key] = true
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dayVer[key]++
	return nil
}

func (m *memAppointments) GetByID(ctx context.Context, clinicID, id string) (*models.Appointment, error) {
	if err := m.fail("get"); err != nil {
		return nil, err
	}
	view, done := m.snapshot(ctx)
	defer done()
	a, ok := view[id]
	if !ok || a.ClinicID != clinicID {
		return nil, fmt.Errorf("get appointment: %w", repository.ErrNotFound)
	}
	c := cloneAppointment(a)
	return &c, nil
}

func (m *memAppointments) List(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	view, done := m.snapshot(ctx)
	defer done()
	out := []models.Appointment{}
	for _, a := range view {
		if a.ClinicID != f.ClinicID ||
			(f.ProviderID != "" && a.ProviderID != f.ProviderID) ||
			(f.PatientID != "" && a.PatientID != f.PatientID) ||
			(f.Status != "" && a.Status != f.Status) {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	return out, nil
}

func (m *memAppointments) ListBlocking(ctx context.Context, clinicID, providerID string, from, to time.Time) ([]models.Appointment, error) {
	if err := m.fail("listBlocking"); err != nil {
		return nil, err
	}
	view, done := m.snapshot(ctx)
	defer done()
	out := []models.Appointment{}
	for _, a := range view {
		if a.ClinicID != clinicID || a.ProviderID != providerID || !a.Status.BlocksSchedule() {
			continue
		}
		if a.ScheduledStart.Before(to) && a.ScheduledEnd.After(from) {
			out = append(out, cloneAppointment(a))
		}
	}
	return out, nil
}

func (m *memAppointments) Insert(ctx context.Context, appt *models.Appointment) error {
	if err := m.fail("insert"); err != nil {
		return err
	}
	view, done := m.snapshot(ctx)
	_, exists := view[appt.ID]
	done()
	if exists {
		return repository.ErrWriteConflict
	}
	m.write(ctx, *appt)
	return nil
}

func (m *memAppointments) UpdateStatus(ctx context.Context, appt *models.Appointment) error {
	view, done := m.snapshot(ctx)
	_, ok := view[appt.ID]
	done()
	if !ok {
		return repository.ErrNotFound
	}
	m.write(ctx, *appt)
	return nil
}

func (m *memAppointments) AppendReschedule(ctx context.Context, appt *models.Appointment, _ models.RescheduleEntry) error {
	if err := m.fail("appendReschedule"); err != nil {
		return err
	}
	view, done := m.snapshot(ctx)
	_, ok := view[appt.ID]
	done()
	if !ok {
		return repository.ErrNotFound
	}
	m.write(ctx, *appt)
	return nil
}

func (m *memAppointments) EnsureIndexes(context.Context) error { return nil }

func (m *memAppointments) put(a models.Appointment) {
	m.write(context.Background(), a)
}

func (m *memAppointments) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *memAppointments) stored(id string) models.Appointment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAppointment(m.byID[id])
}

type memProviders struct {
	byID map[string]models.Provider
}

func (m *memProviders) GetByID(_ context.Context, clinicID, id string) (*models.Provider, error) {
	p, ok := m.byID[id]
	if !ok || p.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProviders) List(_ context.Context, f models.ProviderFilter) ([]models.Provider, error) {
	out := []models.Provider{}
	for _, p := range m.byID {
		if p.ClinicID != f.ClinicID || (f.ActiveOnly && !p.Active) {
			continue
		}
		if f.AppointmentTypeID != "" && !p.Offers(f.AppointmentTypeID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memProviders) Create(_ context.Context, p *models.Provider) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *memProviders) Update(_ context.Context, p *models.Provider) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *memProviders) EnsureIndexes(context.Context) error { return nil }

type memTypes struct {
	byID map[string]models.AppointmentType
}

func (m *memTypes) GetByID(_ context.Context, clinicID, id string) (*models.AppointmentType, error) {
	t, ok := m.byID[id]
	if !ok || t.ClinicID != clinicID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (m *memTypes) List(_ context.Context, clinicID string, activeOnly bool) ([]models.AppointmentType, error) {
	out := []models.AppointmentType{}
	for _, t := range m.byID {
		if t.ClinicID == clinicID && (!activeOnly || t.Active) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTypes) Create(_ context.Context, t *models.AppointmentType) error {
	m.byID[t.ID] = *t
	return nil
}

func (m *memTypes) Update(_ context.Context, t *models.AppointmentType) error {
	m.byID[t.ID] = *t
	return nil
}

func (m *memTypes) EnsureIndexes(context.Context) error { return nil }

// recordingEvents captures published events and reminders.
type recordingEvents struct {
	mu         sync.Mutex
	events     []models.AppointmentEvent
	reminders  []time.Time
	publishErr error
}

func (r *recordingEvents) Publish(_ context.Context, e models.AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.publishErr != nil {
		return r.publishErr
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingEvents) ScheduleReminder(_ context.Context, _ *models.Appointment, fireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders = append(r.reminders, fireAt)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
