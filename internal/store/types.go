package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/catalog"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Terminal reports whether no further slot/date mutation is permitted.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// NonCancelled is the status set that occupies a grid cell. Used for
// conflict and availability computations.
var NonCancelled = []Status{StatusPending, StatusConfirmed, StatusCompleted}

// DateLayout is the calendar-day wire format ("no time component").
const DateLayout = "2006-01-02"

// Appointment is one scheduled clinic visit. Date is a calendar day in
// DateLayout form; Slot is a canonical catalog token.
type Appointment struct {
	ID        uuid.UUID    `json:"id"`
	Date      string       `json:"date"`
	Slot      catalog.Slot `json:"slot"`
	Status    Status       `json:"status"`
	PatientID uuid.UUID    `json:"patient_id"`
	DoctorID  uuid.UUID    `json:"doctor_id"`
	ServiceID uuid.UUID    `json:"service_id"`

	// RemindersSent maps a reminder window class (e.g. "24h", "1h") to
	// whether that class has already fired. Each class fires at most once.
	RemindersSent map[string]bool `json:"reminders_sent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderSent reports whether the given window class already fired.
func (a *Appointment) ReminderSent(class string) bool {
	return a.RemindersSent[class]
}

// Person is the minimal identity projection the scheduler needs.
type Person struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// Doctor is the scheduling-relevant employee projection. Inactive doctors
// are excluded from availability.
type Doctor struct {
	ID     uuid.UUID `json:"id"`
	Person *Person   `json:"person,omitempty"`
	Role   string    `json:"role"`
	Active bool      `json:"active"`
}

const RoleDoctor = "DOCTOR"

// AppointmentFilter narrows List queries. Nil fields are ignored. An empty
// Statuses slice means any status.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Date      *string
	Slot      *catalog.Slot
	Statuses  []Status
	ExcludeID *uuid.UUID
}

// AppointmentPatch carries partial updates. Nil fields are left untouched.
type AppointmentPatch struct {
	Date      *string
	Slot      *catalog.Slot
	DoctorID  *uuid.UUID
	ServiceID *uuid.UUID
}
