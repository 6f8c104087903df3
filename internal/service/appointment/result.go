package appointment

import "github.com/ovall/dentavia_backend/internal/store"

// Stable numeric outcome codes. Clients branch on these, so values never
// change meaning once shipped.
const (
	CodeOK                  = 0
	CodeAppointmentNotFound = 4
	CodeDoctorNotFound      = 21
	CodePatientNotFound     = 22
	CodeInvalidDate         = 23
	CodeDoctorSlotTaken     = 24
	CodePatientSlotTaken    = 25
	CodeInvalidSlot         = 26
	CodePastDate            = 27
	CodeTerminalState       = 28
	CodeStoreFailure        = 500
)

// Result is the tagged outcome of every scheduler operation. Validation
// failures are ordinary results, not errors; only Code 0 carries an
// Appointment.
type Result struct {
	Code        int                `json:"code"`
	Message     string             `json:"message"`
	Appointment *store.Appointment `json:"appointment,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Code == CodeOK
}

func ok(a *store.Appointment) Result {
	return Result{Code: CodeOK, Message: "ok", Appointment: a}
}

func fail(code int, msg string) Result {
	return Result{Code: code, Message: msg}
}
