package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/internal/store"
	"github.com/ovall/dentavia_backend/internal/store/memstore"
)

type fakeGateway struct {
	mu     sync.Mutex
	user   []sentEvent
	bcast  []sentEvent
}

type sentEvent struct {
	userID uuid.UUID
	event  string
}

func (f *fakeGateway) NotifyUser(_ context.Context, userID uuid.UUID, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = append(f.user, sentEvent{userID: userID, event: event})
	return nil
}

func (f *fakeGateway) NotifyAll(_ context.Context, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bcast = append(f.bcast, sentEvent{event: event})
	return nil
}

func (f *fakeGateway) userEvents() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvent(nil), f.user...)
}

func (f *fakeGateway) broadcasts() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvent(nil), f.bcast...)
}

type fixture struct {
	svc     Service
	st      *memstore.Store
	gw      *fakeGateway
	doctor  *store.Doctor
	patient *store.Person
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	gw := &fakeGateway{}

	doctorID := uuid.New()
	doctor := &store.Doctor{
		ID:     doctorID,
		Person: &store.Person{ID: doctorID, FirstName: "Sara", LastName: "Nikzad"},
		Role:   store.RoleDoctor,
		Active: true,
	}
	patient := &store.Person{ID: uuid.New(), FirstName: "Reza", LastName: "Tehrani"}
	st.AddDoctor(doctor)
	st.AddPatient(patient)

	svc := New(st, st, st, gw).(*appointmentService)
	svc.now = func() time.Time {
		return time.Date(2026, time.September, 10, 12, 0, 0, 0, time.UTC)
	}
	return &fixture{svc: svc, st: st, gw: gw, doctor: doctor, patient: patient}
}

func (fx *fixture) createReq() CreateRequest {
	return CreateRequest{
		Date:      "2026-09-15",
		Slot:      "09:00",
		PatientID: fx.patient.ID,
		DoctorID:  fx.doctor.ID,
		ServiceID: uuid.New(),
	}
}

func TestCreateHappyPath(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	res := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, res.Code, res.Message)
	require.NotNil(t, res.Appointment)

	assert.Equal(t, store.StatusPending, res.Appointment.Status)
	assert.Equal(t, "2026-09-15", res.Appointment.Date)
	assert.EqualValues(t, "09:00", res.Appointment.Slot)

	events := fx.gw.userEvents()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventAppointmentCreated, events[0].event)
	assert.Equal(t, fx.doctor.ID, events[0].userID)

	assert.True(t, fx.st.HasDoctorLink(fx.patient.ID, fx.doctor.ID))
}

func TestCreateNormalizesLegacySlotToken(t *testing.T) {
	fx := newFixture(t)

	req := fx.createReq()
	req.Slot = "H09_30"
	res := fx.svc.Create(context.Background(), req)
	require.Equal(t, CodeOK, res.Code)
	assert.EqualValues(t, "09:30", res.Appointment.Slot)
}

func TestCreateValidationCodes(t *testing.T) {
	tests := []struct {
		name string
		mut  func(fx *fixture, req *CreateRequest)
		code int
	}{
		{"unknown doctor", func(fx *fixture, req *CreateRequest) { req.DoctorID = uuid.New() }, CodeDoctorNotFound},
		{"unknown patient", func(fx *fixture, req *CreateRequest) { req.PatientID = uuid.New() }, CodePatientNotFound},
		{"bad date", func(fx *fixture, req *CreateRequest) { req.Date = "15/09/2026" }, CodeInvalidDate},
		{"past date", func(fx *fixture, req *CreateRequest) { req.Date = "2026-09-01" }, CodePastDate},
		{"lunch slot", func(fx *fixture, req *CreateRequest) { req.Slot = "12:00" }, CodeInvalidSlot},
		{"garbage slot", func(fx *fixture, req *CreateRequest) { req.Slot = "whenever" }, CodeInvalidSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			req := fx.createReq()
			tt.mut(fx, &req)

			res := fx.svc.Create(context.Background(), req)
			assert.Equal(t, tt.code, res.Code)
			assert.Nil(t, res.Appointment)
			assert.Empty(t, fx.gw.userEvents())
		})
	}
}

func TestCreateGraceAllowsYesterday(t *testing.T) {
	fx := newFixture(t)

	req := fx.createReq()
	req.Date = "2026-09-09"
	res := fx.svc.Create(context.Background(), req)
	assert.Equal(t, CodeOK, res.Code)
}

func TestCreateGraceIgnoresServerZone(t *testing.T) {
	fx := newFixture(t)

	// Server clock in UTC+12: locally it is already Sep 10, but in UTC it is
	// still Sep 9, so Sep 8 is within the one-day grace.
	fx.svc.(*appointmentService).now = func() time.Time {
		return time.Date(2026, time.September, 10, 2, 0, 0, 0, time.FixedZone("UTC+12", 12*3600))
	}

	req := fx.createReq()
	req.Date = "2026-09-08"
	res := fx.svc.Create(context.Background(), req)
	assert.Equal(t, CodeOK, res.Code, res.Message)
}

func TestCreateDoctorConflict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.Equal(t, CodeOK, fx.svc.Create(ctx, fx.createReq()).Code)

	other := &store.Person{ID: uuid.New(), FirstName: "Nima"}
	fx.st.AddPatient(other)
	req := fx.createReq()
	req.PatientID = other.ID

	res := fx.svc.Create(ctx, req)
	assert.Equal(t, CodeDoctorSlotTaken, res.Code)
}

func TestCreatePatientConflictAcrossDoctors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.Equal(t, CodeOK, fx.svc.Create(ctx, fx.createReq()).Code)

	secondID := uuid.New()
	fx.st.AddDoctor(&store.Doctor{
		ID:     secondID,
		Person: &store.Person{ID: secondID, FirstName: "Omid"},
		Role:   store.RoleDoctor,
		Active: true,
	})
	req := fx.createReq()
	req.DoctorID = secondID

	res := fx.svc.Create(ctx, req)
	assert.Equal(t, CodePatientSlotTaken, res.Code)
}

func TestCreateReusesCancelledSlot(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, first.Code)
	require.Equal(t, CodeOK, fx.svc.Cancel(ctx, first.Appointment.ID).Code)

	res := fx.svc.Create(ctx, fx.createReq())
	assert.Equal(t, CodeOK, res.Code)
}

func TestUpdateReschedule(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)

	newSlot := "H10_00"
	res := fx.svc.Update(ctx, created.Appointment.ID, UpdateRequest{Slot: &newSlot})
	require.Equal(t, CodeOK, res.Code, res.Message)
	assert.EqualValues(t, "10:00", res.Appointment.Slot)

	events := fx.gw.userEvents()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventAppointmentUpdated, events[1].event)
}

func TestUpdateOwnSlotIsNotAConflict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)

	// Keeping the same slot while changing the service must pass the
	// conflict check.
	serviceID := uuid.New()
	res := fx.svc.Update(ctx, created.Appointment.ID, UpdateRequest{ServiceID: &serviceID})
	assert.Equal(t, CodeOK, res.Code, res.Message)
}

func TestUpdateConflictWithOtherAppointment(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, first.Code)

	other := &store.Person{ID: uuid.New(), FirstName: "Nima"}
	fx.st.AddPatient(other)
	second := fx.createReq()
	second.PatientID = other.ID
	second.Slot = "10:00"
	secondRes := fx.svc.Create(ctx, second)
	require.Equal(t, CodeOK, secondRes.Code)

	clash := "09:00"
	res := fx.svc.Update(ctx, secondRes.Appointment.ID, UpdateRequest{Slot: &clash})
	assert.Equal(t, CodeDoctorSlotTaken, res.Code)
}

func TestUpdateRejectsTerminal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)
	require.Equal(t, CodeOK, fx.svc.Cancel(ctx, created.Appointment.ID).Code)

	date := "2026-09-20"
	res := fx.svc.Update(ctx, created.Appointment.ID, UpdateRequest{Date: &date})
	assert.Equal(t, CodeTerminalState, res.Code)
}

func TestUpdateUnknownAppointment(t *testing.T) {
	fx := newFixture(t)
	res := fx.svc.Update(context.Background(), uuid.New(), UpdateRequest{})
	assert.Equal(t, CodeAppointmentNotFound, res.Code)
}

func TestCancelIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)

	first := fx.svc.Cancel(ctx, created.Appointment.ID)
	require.Equal(t, CodeOK, first.Code)
	assert.Equal(t, store.StatusCancelled, first.Appointment.Status)

	again := fx.svc.Cancel(ctx, created.Appointment.ID)
	assert.Equal(t, CodeOK, again.Code)

	// One create, one cancel; the repeat cancel stays silent.
	events := fx.gw.userEvents()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventAppointmentCancelled, events[1].event)
}

func TestConfirmBroadcasts(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)

	res := fx.svc.Confirm(ctx, created.Appointment.ID)
	require.Equal(t, CodeOK, res.Code)
	assert.Equal(t, store.StatusConfirmed, res.Appointment.Status)

	bcasts := fx.gw.broadcasts()
	require.Len(t, bcasts, 1)
	assert.Equal(t, notify.EventAppointmentConfirmed, bcasts[0].event)

	// Confirming twice must not broadcast twice.
	assert.Equal(t, CodeOK, fx.svc.Confirm(ctx, created.Appointment.ID).Code)
	assert.Len(t, fx.gw.broadcasts(), 1)
}

func TestConfirmRejectsCancelled(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)
	require.Equal(t, CodeOK, fx.svc.Cancel(ctx, created.Appointment.ID).Code)

	res := fx.svc.Confirm(ctx, created.Appointment.ID)
	assert.Equal(t, CodeTerminalState, res.Code)
}

func TestListByPatientOrderedAndFiltered(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	later := fx.createReq()
	later.Date = "2026-09-16"
	later.Slot = "08:00"
	require.Equal(t, CodeOK, fx.svc.Create(ctx, later).Code)

	afternoon := fx.createReq()
	afternoon.Slot = "14:00"
	require.Equal(t, CodeOK, fx.svc.Create(ctx, afternoon).Code)

	morning := fx.createReq()
	morning.Slot = "08:30"
	require.Equal(t, CodeOK, fx.svc.Create(ctx, morning).Code)

	dropped := fx.createReq()
	dropped.Slot = "16:00"
	droppedRes := fx.svc.Create(ctx, dropped)
	require.Equal(t, CodeOK, droppedRes.Code)
	require.Equal(t, CodeOK, fx.svc.Cancel(ctx, droppedRes.Appointment.ID).Code)

	got, err := fx.svc.ListByPatient(ctx, fx.patient.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.EqualValues(t, "08:30", got[0].Slot)
	assert.EqualValues(t, "14:00", got[1].Slot)
	assert.Equal(t, "2026-09-16", got[2].Date)
}

func TestListByDateRejectsBadDate(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.ListByDate(context.Background(), "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGet(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.svc.Create(ctx, fx.createReq())
	require.Equal(t, CodeOK, created.Code)

	res := fx.svc.Get(ctx, created.Appointment.ID)
	require.Equal(t, CodeOK, res.Code)
	assert.Equal(t, created.Appointment.ID, res.Appointment.ID)

	assert.Equal(t, CodeAppointmentNotFound, fx.svc.Get(ctx, uuid.New()).Code)
}
