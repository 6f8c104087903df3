package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the shared id/timestamps columns.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Person holds the identity fields of both patients and employees.
type Person struct {
	Base
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Email     string `gorm:"size:255;index"`
	Phone     string `gorm:"size:32"`
}

// Employee is a clinic staff member. Doctors are employees with role DOCTOR
// and an activity flag; inactive doctors never appear in availability.
type Employee struct {
	Base
	PersonID uuid.UUID `gorm:"type:uuid;index"`
	Person   *Person   `gorm:"foreignKey:PersonID"`
	Role     string    `gorm:"size:32;index"`
	Active   bool      `gorm:"default:true"`
}

// Appointment is the booking row. The two partial unique indexes are the
// authoritative guard against double-booking: the service-level conflict
// scan is only a fast path, and a concurrent insert that slips past it is
// rejected here. Cancelled rows are excluded so cancellation frees the cell.
type Appointment struct {
	Base
	Date      string    `gorm:"size:10;index;uniqueIndex:ux_appt_doctor_slot,where:status <> 'CANCELLED';uniqueIndex:ux_appt_patient_slot,where:status <> 'CANCELLED'"`
	Slot      string    `gorm:"size:5;uniqueIndex:ux_appt_doctor_slot,where:status <> 'CANCELLED';uniqueIndex:ux_appt_patient_slot,where:status <> 'CANCELLED'"`
	Status    string    `gorm:"size:16;index;default:'PENDING'"`
	PatientID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_appt_patient_slot,where:status <> 'CANCELLED'"`
	DoctorID  uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_appt_doctor_slot,where:status <> 'CANCELLED'"`
	ServiceID uuid.UUID `gorm:"type:uuid"`

	Reminder24hSent bool `gorm:"default:false"`
	Reminder1hSent  bool `gorm:"default:false"`
}

// RecordDoctor links a patient's medical record to a doctor who has treated
// them. Insertions are idempotent via the composite unique index.
type RecordDoctor struct {
	Base
	PatientID uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_record_doctor"`
	DoctorID  uuid.UUID `gorm:"type:uuid;uniqueIndex:ux_record_doctor"`
}

const (
	doctorSlotIndex  = "ux_appt_doctor_slot"
	patientSlotIndex = "ux_appt_patient_slot"
)
