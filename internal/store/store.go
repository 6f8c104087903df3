// Package store defines the persistence contracts the scheduler, availability
// engine and reminder dispatcher depend on. Implementations live in
// gormstore (Postgres) and memstore (tests).
package store

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentStore is the appointment table contract.
//
// Create and Update must enforce the slot-uniqueness invariants at the store
// level: at most one non-cancelled appointment per (doctor, date, slot) and
// per (patient, date, slot). Violations surface as ErrDoctorSlotTaken /
// ErrPatientSlotTaken so callers can treat the constraint as authoritative
// and keep their own conflict scan as a fast-path check only.
type AppointmentStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, f AppointmentFilter) ([]*Appointment, error)
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, p AppointmentPatch) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, s Status) (*Appointment, error)

	// ListPendingForReminder returns PENDING appointments whose flag for the
	// given window class is still false.
	ListPendingForReminder(ctx context.Context, class string) ([]*Appointment, error)

	// MarkReminderSent persists the one-shot flag for the given window class.
	// It is the commit point of reminder delivery and must be durable before
	// the next sweep can observe the appointment.
	MarkReminderSent(ctx context.Context, id uuid.UUID, class string) error
}

// Directory resolves the people the scheduler references.
type Directory interface {
	FindDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
	FindPatient(ctx context.Context, id uuid.UUID) (*Person, error)
	ListActiveDoctors(ctx context.Context) ([]*Doctor, error)
}

// RecordStore keeps the patient's longitudinal medical record linked to
// every doctor who has ever treated them.
type RecordStore interface {
	// EnsureDoctorLink is an idempotent upsert of the record-to-doctor
	// association for the patient/doctor pair.
	EnsureDoctorLink(ctx context.Context, patientID, doctorID uuid.UUID) error
}
