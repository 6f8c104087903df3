// Package memstore is an in-memory store implementation. It backs unit
// tests and enforces the same slot-uniqueness and terminal-state rules as
// the Postgres store so service tests exercise realistic behavior.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
)

type Store struct {
	mu sync.RWMutex

	appointments map[uuid.UUID]*store.Appointment
	doctors      map[uuid.UUID]*store.Doctor
	patients     map[uuid.UUID]*store.Person
	recordLinks  map[[2]uuid.UUID]bool // (patient, doctor)
}

func New() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]*store.Appointment),
		doctors:      make(map[uuid.UUID]*store.Doctor),
		patients:     make(map[uuid.UUID]*store.Person),
		recordLinks:  make(map[[2]uuid.UUID]bool),
	}
}

// ---------------------------------------------------------------------------
// Seeding helpers
// ---------------------------------------------------------------------------

func (s *Store) AddDoctor(d *store.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors[d.ID] = d
}

func (s *Store) AddPatient(p *store.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = p
}

// HasDoctorLink reports whether a record-to-doctor association exists.
func (s *Store) HasDoctorLink(patientID, doctorID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordLinks[[2]uuid.UUID{patientID, doctorID}]
}

// ---------------------------------------------------------------------------
// AppointmentStore
// ---------------------------------------------------------------------------

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*store.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(a), nil
}

func (s *Store) List(ctx context.Context, f store.AppointmentFilter) ([]*store.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Appointment
	for _, a := range s.appointments {
		if matches(a, f) {
			out = append(out, clone(a))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return catalog.Index(out[i].Slot) < catalog.Index(out[j].Slot)
	})
	return out, nil
}

func (s *Store) Create(ctx context.Context, a *store.Appointment) (*store.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(a.DoctorID, a.PatientID, a.Date, a.Slot, uuid.Nil); err != nil {
		return nil, err
	}

	na := clone(a)
	if na.ID == uuid.Nil {
		na.ID = uuid.New()
	}
	if na.Status == "" {
		na.Status = store.StatusPending
	}
	if na.RemindersSent == nil {
		na.RemindersSent = map[string]bool{}
	}
	now := time.Now()
	na.CreatedAt = now
	na.UpdatedAt = now

	s.appointments[na.ID] = na
	return clone(na), nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, p store.AppointmentPatch) (*store.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if a.Status.Terminal() {
		return nil, store.ErrImmutableTerminal
	}

	next := clone(a)
	if p.Date != nil {
		next.Date = *p.Date
	}
	if p.Slot != nil {
		next.Slot = *p.Slot
	}
	if p.DoctorID != nil {
		next.DoctorID = *p.DoctorID
	}
	if p.ServiceID != nil {
		next.ServiceID = *p.ServiceID
	}

	if err := s.checkUnique(next.DoctorID, next.PatientID, next.Date, next.Slot, id); err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now()
	s.appointments[id] = next
	return clone(next), nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, st store.Status) (*store.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.Status = st
	a.UpdatedAt = time.Now()
	return clone(a), nil
}

func (s *Store) ListPendingForReminder(ctx context.Context, class string) ([]*store.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Appointment
	for _, a := range s.appointments {
		if a.Status == store.StatusPending && !a.RemindersSent[class] {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID, class string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return store.ErrNotFound
	}
	if a.RemindersSent == nil {
		a.RemindersSent = map[string]bool{}
	}
	a.RemindersSent[class] = true
	a.UpdatedAt = time.Now()
	return nil
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func (s *Store) FindDoctor(ctx context.Context, id uuid.UUID) (*store.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) FindPatient(ctx context.Context, id uuid.UUID) (*store.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListActiveDoctors(ctx context.Context) ([]*store.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Doctor
	for _, d := range s.doctors {
		if d.Active && d.Role == store.RoleDoctor {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// ---------------------------------------------------------------------------
// RecordStore
// ---------------------------------------------------------------------------

func (s *Store) EnsureDoctorLink(ctx context.Context, patientID, doctorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLinks[[2]uuid.UUID{patientID, doctorID}] = true
	return nil
}

// ---------------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------------

// checkUnique mirrors the partial unique indexes of the Postgres store:
// cancelled rows free the grid cell.
func (s *Store) checkUnique(doctorID, patientID uuid.UUID, date string, slot catalog.Slot, exclude uuid.UUID) error {
	for id, a := range s.appointments {
		if id == exclude || a.Status == store.StatusCancelled {
			continue
		}
		if a.Date != date || a.Slot != slot {
			continue
		}
		if a.DoctorID == doctorID {
			return store.ErrDoctorSlotTaken
		}
		if a.PatientID == patientID {
			return store.ErrPatientSlotTaken
		}
	}
	return nil
}

func matches(a *store.Appointment, f store.AppointmentFilter) bool {
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if f.PatientID != nil && a.PatientID != *f.PatientID {
		return false
	}
	if f.Date != nil && a.Date != *f.Date {
		return false
	}
	if f.Slot != nil && a.Slot != *f.Slot {
		return false
	}
	if f.ExcludeID != nil && a.ID == *f.ExcludeID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if a.Status == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func clone(a *store.Appointment) *store.Appointment {
	c := *a
	c.RemindersSent = make(map[string]bool, len(a.RemindersSent))
	for k, v := range a.RemindersSent {
		c.RemindersSent[k] = v
	}
	return &c
}
