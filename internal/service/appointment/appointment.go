// Package appointment implements the scheduler: booking, rescheduling,
// cancellation and confirmation of clinic visits against the fixed slot
// grid, with slot-conflict enforcement and realtime doctor notification.
package appointment

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	ServiceID uuid.UUID `json:"service_id"`
}

// UpdateRequest reschedules an existing appointment. Nil fields are left
// untouched.
type UpdateRequest struct {
	Date      *string    `json:"date"`
	Slot      *string    `json:"slot"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
	ServiceID *uuid.UUID `json:"service_id"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) Result
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) Result
	Cancel(ctx context.Context, id uuid.UUID) Result
	Confirm(ctx context.Context, id uuid.UUID) Result
	Get(ctx context.Context, id uuid.UUID) Result

	// Listings return non-cancelled appointments ordered by date, then by
	// slot position in clinic hours.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*store.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*store.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]*store.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	appts   store.AppointmentStore
	dir     store.Directory
	records store.RecordStore
	gateway notify.Gateway
	now     func() time.Time
}

func New(appts store.AppointmentStore, dir store.Directory, records store.RecordStore, gateway notify.Gateway) Service {
	return &appointmentService{
		appts:   appts,
		dir:     dir,
		records: records,
		gateway: gateway,
		now:     time.Now,
	}
}

func (s *appointmentService) Create(ctx context.Context, req CreateRequest) Result {
	doctor, err := s.dir.FindDoctor(ctx, req.DoctorID)
	if errors.Is(err, store.ErrNotFound) {
		return fail(CodeDoctorNotFound, "doctor not found")
	}
	if err != nil {
		return storeFailure("find doctor", err)
	}

	if _, err := s.dir.FindPatient(ctx, req.PatientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(CodePatientNotFound, "patient not found")
		}
		return storeFailure("find patient", err)
	}

	if res := s.checkDate(req.Date); !res.OK() {
		return res
	}

	slot := catalog.Normalize(req.Slot)
	if !catalog.IsValid(slot) {
		return fail(CodeInvalidSlot, "slot is not in the clinic grid")
	}

	if res := s.checkConflicts(ctx, req.DoctorID, req.PatientID, req.Date, slot, nil); !res.OK() {
		return res
	}

	created, err := s.appts.Create(ctx, &store.Appointment{
		Date:      req.Date,
		Slot:      slot,
		Status:    store.StatusPending,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		if res, mapped := mapStoreConflict(err); mapped {
			return res
		}
		return storeFailure("create appointment", err)
	}

	if err := s.records.EnsureDoctorLink(ctx, created.PatientID, created.DoctorID); err != nil {
		slog.Warn("record link upsert failed", "appointment", created.ID, "err", err)
	}
	s.notifyDoctor(ctx, doctor.ID, notify.EventAppointmentCreated, created)
	return ok(created)
}

func (s *appointmentService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) Result {
	current, err := s.appts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(CodeAppointmentNotFound, "appointment not found")
	}
	if err != nil {
		return storeFailure("find appointment", err)
	}
	if current.Status.Terminal() {
		return fail(CodeTerminalState, "appointment can no longer be modified")
	}

	doctorID := current.DoctorID
	if req.DoctorID != nil {
		if _, err := s.dir.FindDoctor(ctx, *req.DoctorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fail(CodeDoctorNotFound, "doctor not found")
			}
			return storeFailure("find doctor", err)
		}
		doctorID = *req.DoctorID
	}

	date := current.Date
	if req.Date != nil {
		if res := s.checkDate(*req.Date); !res.OK() {
			return res
		}
		date = *req.Date
	}

	slot := current.Slot
	var slotPatch *catalog.Slot
	if req.Slot != nil {
		norm := catalog.Normalize(*req.Slot)
		if !catalog.IsValid(norm) {
			return fail(CodeInvalidSlot, "slot is not in the clinic grid")
		}
		slot = norm
		slotPatch = &norm
	}

	// The appointment's own row never counts as a conflict.
	if res := s.checkConflicts(ctx, doctorID, current.PatientID, date, slot, &id); !res.OK() {
		return res
	}

	updated, err := s.appts.Update(ctx, id, store.AppointmentPatch{
		Date:      req.Date,
		Slot:      slotPatch,
		DoctorID:  req.DoctorID,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		if res, mapped := mapStoreConflict(err); mapped {
			return res
		}
		if errors.Is(err, store.ErrImmutableTerminal) {
			return fail(CodeTerminalState, "appointment can no longer be modified")
		}
		return storeFailure("update appointment", err)
	}

	s.notifyDoctor(ctx, updated.DoctorID, notify.EventAppointmentUpdated, updated)
	return ok(updated)
}

// Cancel is idempotent: cancelling a cancelled appointment succeeds without
// a second status write or notification.
func (s *appointmentService) Cancel(ctx context.Context, id uuid.UUID) Result {
	current, err := s.appts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(CodeAppointmentNotFound, "appointment not found")
	}
	if err != nil {
		return storeFailure("find appointment", err)
	}
	if current.Status == store.StatusCancelled {
		return ok(current)
	}

	cancelled, err := s.appts.UpdateStatus(ctx, id, store.StatusCancelled)
	if err != nil {
		return storeFailure("cancel appointment", err)
	}

	s.notifyDoctor(ctx, cancelled.DoctorID, notify.EventAppointmentCancelled, cancelled)
	return ok(cancelled)
}

func (s *appointmentService) Confirm(ctx context.Context, id uuid.UUID) Result {
	current, err := s.appts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(CodeAppointmentNotFound, "appointment not found")
	}
	if err != nil {
		return storeFailure("find appointment", err)
	}
	if current.Status.Terminal() {
		return fail(CodeTerminalState, "appointment can no longer be modified")
	}
	if current.Status == store.StatusConfirmed {
		return ok(current)
	}

	confirmed, err := s.appts.UpdateStatus(ctx, id, store.StatusConfirmed)
	if err != nil {
		return storeFailure("confirm appointment", err)
	}

	if err := s.gateway.NotifyAll(ctx, notify.EventAppointmentConfirmed, confirmed); err != nil {
		slog.Warn("notify broadcast failed", "event", notify.EventAppointmentConfirmed, "err", err)
	}
	return ok(confirmed)
}

func (s *appointmentService) Get(ctx context.Context, id uuid.UUID) Result {
	a, err := s.appts.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fail(CodeAppointmentNotFound, "appointment not found")
	}
	if err != nil {
		return storeFailure("find appointment", err)
	}
	return ok(a)
}

func (s *appointmentService) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*store.Appointment, error) {
	return s.list(ctx, store.AppointmentFilter{PatientID: &patientID, Statuses: store.NonCancelled})
}

func (s *appointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*store.Appointment, error) {
	return s.list(ctx, store.AppointmentFilter{DoctorID: &doctorID, Statuses: store.NonCancelled})
}

func (s *appointmentService) ListByDate(ctx context.Context, date string) ([]*store.Appointment, error) {
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.list(ctx, store.AppointmentFilter{Date: &date, Statuses: store.NonCancelled})
}

func (s *appointmentService) list(ctx context.Context, f store.AppointmentFilter) ([]*store.Appointment, error) {
	appts, err := s.appts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return catalog.Index(appts[i].Slot) < catalog.Index(appts[j].Slot)
	})
	return appts, nil
}

// ---------------------------------------------------------------------------
// Validation helpers
// ---------------------------------------------------------------------------

// checkDate parses the date and applies the one-day grace tolerance: a
// booking dated yesterday is still accepted to absorb timezone skew between
// clients and server.
func (s *appointmentService) checkDate(date string) Result {
	day, err := time.Parse(store.DateLayout, date)
	if err != nil {
		return fail(CodeInvalidDate, "date must be in YYYY-MM-DD form")
	}
	now := s.now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	if day.Before(yesterday) {
		return fail(CodePastDate, "date is in the past")
	}
	return Result{Code: CodeOK}
}

// checkConflicts is the fast-path slot check. The store's unique indexes
// remain authoritative; see mapStoreConflict.
func (s *appointmentService) checkConflicts(ctx context.Context, doctorID, patientID uuid.UUID, date string, slot catalog.Slot, exclude *uuid.UUID) Result {
	busy, err := s.hasBooking(ctx, store.AppointmentFilter{
		DoctorID:  &doctorID,
		Date:      &date,
		Slot:      &slot,
		Statuses:  store.NonCancelled,
		ExcludeID: exclude,
	})
	if err != nil {
		return storeFailure("check doctor conflict", err)
	}
	if busy {
		return fail(CodeDoctorSlotTaken, "doctor already has an appointment in this slot")
	}

	busy, err = s.hasBooking(ctx, store.AppointmentFilter{
		PatientID: &patientID,
		Date:      &date,
		Slot:      &slot,
		Statuses:  store.NonCancelled,
		ExcludeID: exclude,
	})
	if err != nil {
		return storeFailure("check patient conflict", err)
	}
	if busy {
		return fail(CodePatientSlotTaken, "patient already has an appointment in this slot")
	}
	return Result{Code: CodeOK}
}

func (s *appointmentService) hasBooking(ctx context.Context, f store.AppointmentFilter) (bool, error) {
	appts, err := s.appts.List(ctx, f)
	if err != nil {
		return false, err
	}
	return len(appts) > 0, nil
}

func (s *appointmentService) notifyDoctor(ctx context.Context, doctorID uuid.UUID, event string, a *store.Appointment) {
	if err := s.gateway.NotifyUser(ctx, doctorID, event, a); err != nil {
		slog.Warn("notify doctor failed", "event", event, "doctor", doctorID, "err", err)
	}
}

func mapStoreConflict(err error) (Result, bool) {
	switch {
	case errors.Is(err, store.ErrDoctorSlotTaken):
		return fail(CodeDoctorSlotTaken, "doctor already has an appointment in this slot"), true
	case errors.Is(err, store.ErrPatientSlotTaken):
		return fail(CodePatientSlotTaken, "patient already has an appointment in this slot"), true
	}
	return Result{}, false
}

func storeFailure(op string, err error) Result {
	slog.Error("store operation failed", "op", op, "err", err)
	return fail(CodeStoreFailure, "internal storage error")
}
