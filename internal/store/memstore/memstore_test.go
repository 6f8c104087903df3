package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/store"
)

func TestUniqueConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	doctor := uuid.New()
	patient := uuid.New()

	if _, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: doctor, PatientID: patient, ServiceID: uuid.New(),
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: doctor, PatientID: uuid.New(), ServiceID: uuid.New(),
	})
	if !errors.Is(err, store.ErrDoctorSlotTaken) {
		t.Fatalf("want ErrDoctorSlotTaken, got %v", err)
	}

	_, err = s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: uuid.New(), PatientID: patient, ServiceID: uuid.New(),
	})
	if !errors.Is(err, store.ErrPatientSlotTaken) {
		t.Fatalf("want ErrPatientSlotTaken, got %v", err)
	}
}

func TestCancelledRowFreesSlot(t *testing.T) {
	s := New()
	ctx := context.Background()
	doctor := uuid.New()
	patient := uuid.New()

	a, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: doctor, PatientID: patient, ServiceID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, a.ID, store.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: doctor, PatientID: patient, ServiceID: uuid.New(),
	}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestUpdateRejectsTerminal(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: uuid.New(), PatientID: uuid.New(), ServiceID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateStatus(ctx, a.ID, store.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	date := "2026-09-20"
	_, err = s.Update(ctx, a.ID, store.AppointmentPatch{Date: &date})
	if !errors.Is(err, store.ErrImmutableTerminal) {
		t.Fatalf("want ErrImmutableTerminal, got %v", err)
	}
}

func TestMarkReminderSent(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.Create(ctx, &store.Appointment{
		Date: "2026-09-15", Slot: "09:00", Status: store.StatusPending,
		DoctorID: uuid.New(), PatientID: uuid.New(), ServiceID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := s.ListPendingForReminder(ctx, "24h")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want 1 pending, got %d", len(pending))
	}

	if err := s.MarkReminderSent(ctx, a.ID, "24h"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	pending, err = s.ListPendingForReminder(ctx, "24h")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("want 0 pending after mark, got %d", len(pending))
	}

	got, err := s.FindByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.ReminderSent("24h") {
		t.Fatal("24h flag not set")
	}
	if got.ReminderSent("1h") {
		t.Fatal("1h flag set unexpectedly")
	}
}

func TestFindByIDNotFound(t *testing.T) {
	s := New()
	if _, err := s.FindByID(context.Background(), uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
