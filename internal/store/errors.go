package store

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDoctorSlotTaken   = errors.New("doctor already has a non-cancelled appointment in this slot")
	ErrPatientSlotTaken  = errors.New("patient already has a non-cancelled appointment in this slot")
	ErrUnknownReminder   = errors.New("unknown reminder window class")
	ErrImmutableTerminal = errors.New("appointment is in a terminal state")
)
