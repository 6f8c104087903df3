// Package availability computes which time slots remain bookable for a
// doctor on a given day, and which doctors have any opening left at all.
package availability

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// DoctorOption is one entry in the bookable-doctor listing.
type DoctorOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// FreeSlots returns the catalog slots the doctor still has open on the
	// given day, in clinic-hours order. A cancelled appointment frees its
	// slot again.
	FreeSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]catalog.Slot, error)

	// DoctorsWithAvailability returns the active doctors that have at least
	// one open slot on the given day.
	DoctorsWithAvailability(ctx context.Context, date string) ([]DoctorOption, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type availabilityService struct {
	appts store.AppointmentStore
	dir   store.Directory
}

func New(appts store.AppointmentStore, dir store.Directory) Service {
	return &availabilityService{appts: appts, dir: dir}
}

func (s *availabilityService) FreeSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]catalog.Slot, error) {
	if _, err := parseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	taken, err := s.takenSlots(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	free := make([]catalog.Slot, 0, len(catalog.All()))
	for _, slot := range catalog.All() {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *availabilityService) DoctorsWithAvailability(ctx context.Context, date string) ([]DoctorOption, error) {
	if _, err := parseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	doctors, err := s.dir.ListActiveDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	gridSize := len(catalog.All())
	out := make([]DoctorOption, 0, len(doctors))
	for _, d := range doctors {
		taken, err := s.takenSlots(ctx, d.ID, date)
		if err != nil {
			return nil, err
		}
		if len(taken) >= gridSize {
			continue
		}
		out = append(out, DoctorOption{ID: d.ID, Name: displayName(d)})
	}
	return out, nil
}

// takenSlots returns the set of slots occupied by non-cancelled appointments.
func (s *availabilityService) takenSlots(ctx context.Context, doctorID uuid.UUID, date string) (map[catalog.Slot]bool, error) {
	appts, err := s.appts.List(ctx, store.AppointmentFilter{
		DoctorID: &doctorID,
		Date:     &date,
		Statuses: store.NonCancelled,
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	taken := make(map[catalog.Slot]bool, len(appts))
	for _, a := range appts {
		taken[a.Slot] = true
	}
	return taken, nil
}

func displayName(d *store.Doctor) string {
	if d.Person != nil {
		name := strings.TrimSpace(d.Person.FirstName + " " + d.Person.LastName)
		if name != "" {
			return name
		}
	}
	return "Doctor " + d.ID.String()
}
