package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
	"github.com/ovall/dentavia_backend/internal/store/memstore"
)

type fakeSender struct {
	jobs []Job
	fail bool
}

func (f *fakeSender) Send(_ context.Context, job Job) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeLocker struct {
	held     bool
	acquires int
}

func (f *fakeLocker) Acquire(context.Context) (bool, error) {
	f.acquires++
	return !f.held, nil
}

func (f *fakeLocker) Release(context.Context) {}

// fixedNow is minute-aligned so band arithmetic in tests stays readable.
var fixedNow = time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)

func newDispatcher(t *testing.T, sender Sender, locker Locker) (*Dispatcher, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	d := New(st, st, sender, locker, nil)
	d.now = func() time.Time { return fixedNow }
	return d, st
}

func seed(t *testing.T, st *memstore.Store, date string, slot catalog.Slot) *store.Appointment {
	t.Helper()
	patient := &store.Person{
		ID:        uuid.New(),
		FirstName: "Reza",
		Email:     "reza@example.com",
		Phone:     "+989121234567",
	}
	st.AddPatient(patient)
	a, err := st.Create(context.Background(), &store.Appointment{
		Date:      date,
		Slot:      slot,
		Status:    store.StatusPending,
		PatientID: patient.ID,
		DoctorID:  uuid.New(),
		ServiceID: uuid.New(),
	})
	require.NoError(t, err)
	return a
}

func TestSweepFiresDayBeforeWindow(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcher(t, sender, nil)
	ctx := context.Background()

	// 23h30m out, floored to 23, inside the 24h band.
	a := seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, sender.jobs, 1)
	job := sender.jobs[0]
	assert.Equal(t, a.ID, job.AppointmentID)
	assert.Equal(t, "24h", job.Class)
	assert.Equal(t, "Reza", job.FirstName)
	assert.Equal(t, "2026-09-11", job.Date)
	assert.Equal(t, "11:30", job.Time)

	got, err := st.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent("24h"))
	assert.False(t, got.ReminderSent("1h"))
}

func TestSweepFiresHourBeforeWindow(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcher(t, sender, nil)

	seed(t, st, "2026-09-10", "13:00")

	sent, err := d.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	assert.Equal(t, "1h", sender.jobs[0].Class)
}

func TestSweepIgnoresOutOfBand(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcher(t, sender, nil)

	seed(t, st, "2026-09-15", "09:00") // days out
	seed(t, st, "2026-09-10", "16:30") // 4h out, between bands
	seed(t, st, "2026-09-09", "09:00") // already past

	sent, err := d.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.jobs)
}

func TestSweepAtMostOncePerWindow(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcher(t, sender, nil)
	ctx := context.Background()

	seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	for i := 0; i < 10; i++ {
		sent, err := d.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, sent)
	}
	assert.Len(t, sender.jobs, 1)
}

func TestWindowsFireIndependently(t *testing.T) {
	sender := &fakeSender{}
	d, st := newDispatcher(t, sender, nil)
	ctx := context.Background()

	a := seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// A day later the same appointment enters the hour-before band.
	d.now = func() time.Time {
		return time.Date(2026, time.September, 11, 10, 45, 0, 0, time.UTC)
	}
	sent, err = d.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	assert.Equal(t, "1h", sender.jobs[1].Class)

	got, err := st.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent("24h"))
	assert.True(t, got.ReminderSent("1h"))
}

func TestSweepRetriesAfterDispatchFailure(t *testing.T) {
	sender := &fakeSender{fail: true}
	d, st := newDispatcher(t, sender, nil)
	ctx := context.Background()

	a := seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	got, err := st.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.ReminderSent("24h"))

	sender.fail = false
	sent, err = d.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, sender.jobs, 1)
}

func TestSweepSkipsWhenLeaseHeld(t *testing.T) {
	sender := &fakeSender{}
	locker := &fakeLocker{held: true}
	d, st := newDispatcher(t, sender, locker)

	seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, 1, locker.acquires)
	assert.Empty(t, sender.jobs)
}

// brokenClassStore fails listing for one reminder class only.
type brokenClassStore struct {
	store.AppointmentStore
	class string
}

func (b *brokenClassStore) ListPendingForReminder(ctx context.Context, class string) ([]*store.Appointment, error) {
	if class == b.class {
		return nil, errors.New("unknown reminder column")
	}
	return b.AppointmentStore.ListPendingForReminder(ctx, class)
}

func TestSweepContinuesPastBrokenWindow(t *testing.T) {
	sender := &fakeSender{}
	st := memstore.New()
	d := New(&brokenClassStore{AppointmentStore: st, class: "48h"}, st, sender, nil, []Window{
		{Class: "48h", FromHours: 47, ToHours: 48},
		{Class: "24h", FromHours: 23, ToHours: 24},
	})
	d.now = func() time.Time { return fixedNow }

	seed(t, st, "2026-09-11", "11:30")

	sent, err := d.Sweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.jobs, 1)
	assert.Equal(t, "24h", sender.jobs[0].Class)
}

func TestHoursUntilNormalizesMinuteJitter(t *testing.T) {
	d, _ := newDispatcher(t, &fakeSender{}, nil)

	a := &store.Appointment{Date: "2026-09-11", Slot: "11:30"}

	// Whether the sweep runs at :05 or :55 the floored distance must agree.
	d.now = func() time.Time {
		return time.Date(2026, time.September, 10, 12, 5, 0, 0, time.UTC)
	}
	early, ok := d.hoursUntil(a)
	require.True(t, ok)

	d.now = func() time.Time {
		return time.Date(2026, time.September, 10, 12, 55, 0, 0, time.UTC)
	}
	late, ok := d.hoursUntil(a)
	require.True(t, ok)

	assert.Equal(t, early, late)
	assert.Equal(t, 23, early)
}
