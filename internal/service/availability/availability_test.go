package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
	"github.com/ovall/dentavia_backend/internal/store/memstore"
)

func newDoctor(first, last string) *store.Doctor {
	id := uuid.New()
	return &store.Doctor{
		ID:     id,
		Person: &store.Person{ID: id, FirstName: first, LastName: last},
		Role:   store.RoleDoctor,
		Active: true,
	}
}

func book(t *testing.T, st *memstore.Store, doctorID uuid.UUID, date string, slot catalog.Slot, status store.Status) *store.Appointment {
	t.Helper()
	a, err := st.Create(context.Background(), &store.Appointment{
		Date:      date,
		Slot:      slot,
		Status:    status,
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		ServiceID: uuid.New(),
	})
	require.NoError(t, err)
	return a
}

func TestFreeSlotsFullGridWhenEmpty(t *testing.T) {
	st := memstore.New()
	doc := newDoctor("Sara", "Nikzad")
	st.AddDoctor(doc)

	svc := New(st, st)
	free, err := svc.FreeSlots(context.Background(), doc.ID, "2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, catalog.All(), free)
}

func TestFreeSlotsExcludesBookedIncludesCancelled(t *testing.T) {
	st := memstore.New()
	doc := newDoctor("Sara", "Nikzad")
	st.AddDoctor(doc)
	ctx := context.Background()

	book(t, st, doc.ID, "2026-09-15", "09:00", store.StatusPending)
	book(t, st, doc.ID, "2026-09-15", "14:30", store.StatusConfirmed)

	cancelled := book(t, st, doc.ID, "2026-09-15", "10:00", store.StatusPending)
	_, err := st.UpdateStatus(ctx, cancelled.ID, store.StatusCancelled)
	require.NoError(t, err)

	// A different day must not affect this one.
	book(t, st, doc.ID, "2026-09-16", "08:00", store.StatusPending)

	svc := New(st, st)
	free, err := svc.FreeSlots(ctx, doc.ID, "2026-09-15")
	require.NoError(t, err)

	assert.Len(t, free, len(catalog.All())-2)
	assert.NotContains(t, free, catalog.Slot("09:00"))
	assert.NotContains(t, free, catalog.Slot("14:30"))
	assert.Contains(t, free, catalog.Slot("10:00"))
	assert.Contains(t, free, catalog.Slot("08:00"))
}

func TestFreeSlotsOrderedByClinicHours(t *testing.T) {
	st := memstore.New()
	doc := newDoctor("Sara", "Nikzad")
	st.AddDoctor(doc)

	book(t, st, doc.ID, "2026-09-15", "08:00", store.StatusPending)

	svc := New(st, st)
	free, err := svc.FreeSlots(context.Background(), doc.ID, "2026-09-15")
	require.NoError(t, err)

	for i := 1; i < len(free); i++ {
		assert.Less(t, catalog.Index(free[i-1]), catalog.Index(free[i]))
	}
}

func TestFreeSlotsRejectsBadDate(t *testing.T) {
	st := memstore.New()
	svc := New(st, st)
	_, err := svc.FreeSlots(context.Background(), uuid.New(), "15-09-2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDoctorsWithAvailability(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()

	open := newDoctor("Sara", "Nikzad")
	full := newDoctor("Omid", "Rahimi")
	inactive := newDoctor("Lena", "Kargar")
	inactive.Active = false
	st.AddDoctor(open)
	st.AddDoctor(full)
	st.AddDoctor(inactive)

	for _, slot := range catalog.All() {
		book(t, st, full.ID, "2026-09-15", slot, store.StatusConfirmed)
	}

	svc := New(st, st)
	got, err := svc.DoctorsWithAvailability(ctx, "2026-09-15")
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
	assert.Equal(t, "Sara Nikzad", got[0].Name)
}

func TestDoctorOptionNameFallback(t *testing.T) {
	d := &store.Doctor{ID: uuid.New(), Person: &store.Person{}}
	assert.Equal(t, "Doctor "+d.ID.String(), displayName(d))
}
