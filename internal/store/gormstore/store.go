// Package gormstore implements the store contracts on Postgres via gorm.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema, including the partial unique indexes declared
// on the Appointment model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Person{}, &Employee{}, &Appointment{}, &RecordDoctor{})
}

// ---------------------------------------------------------------------------
// AppointmentStore
// ---------------------------------------------------------------------------

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*store.Appointment, error) {
	var row Appointment
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return toDomain(&row), nil
}

func (s *Store) List(ctx context.Context, f store.AppointmentFilter) ([]*store.Appointment, error) {
	q := s.db.WithContext(ctx).Model(&Appointment{})

	if f.DoctorID != nil {
		q = q.Where("doctor_id = ?", *f.DoctorID)
	}
	if f.PatientID != nil {
		q = q.Where("patient_id = ?", *f.PatientID)
	}
	if f.Date != nil {
		q = q.Where("date = ?", *f.Date)
	}
	if f.Slot != nil {
		q = q.Where("slot = ?", string(*f.Slot))
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}
	if len(f.Statuses) > 0 {
		ss := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			ss[i] = string(st)
		}
		q = q.Where("status IN ?", ss)
	}

	var rows []Appointment
	if err := q.Order("date ASC, slot ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]*store.Appointment, len(rows))
	for i := range rows {
		out[i] = toDomain(&rows[i])
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, a *store.Appointment) (*store.Appointment, error) {
	row := fromDomain(a)
	if row.Status == "" {
		row.Status = string(store.StatusPending)
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return toDomain(row), nil
}

func (s *Store) Update(ctx context.Context, id uuid.UUID, p store.AppointmentPatch) (*store.Appointment, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, store.ErrImmutableTerminal
	}

	patch := map[string]any{}
	if p.Date != nil {
		patch["date"] = *p.Date
	}
	if p.Slot != nil {
		patch["slot"] = string(*p.Slot)
	}
	if p.DoctorID != nil {
		patch["doctor_id"] = *p.DoctorID
	}
	if p.ServiceID != nil {
		patch["service_id"] = *p.ServiceID
	}
	if len(patch) == 0 {
		return current, nil
	}

	err = s.db.WithContext(ctx).Model(&Appointment{}).Where("id = ?", id).Updates(patch).Error
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	return s.FindByID(ctx, id)
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, st store.Status) (*store.Appointment, error) {
	res := s.db.WithContext(ctx).Model(&Appointment{}).
		Where("id = ?", id).
		Update("status", string(st))
	if res.Error != nil {
		return nil, fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *Store) ListPendingForReminder(ctx context.Context, class string) ([]*store.Appointment, error) {
	col, ok := reminderColumn(class)
	if !ok {
		return nil, store.ErrUnknownReminder
	}

	var rows []Appointment
	err := s.db.WithContext(ctx).
		Where("status = ?", string(store.StatusPending)).
		Where(col+" = ?", false).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list pending for reminder: %w", err)
	}

	out := make([]*store.Appointment, len(rows))
	for i := range rows {
		out[i] = toDomain(&rows[i])
	}
	return out, nil
}

func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID, class string) error {
	col, ok := reminderColumn(class)
	if !ok {
		return store.ErrUnknownReminder
	}

	res := s.db.WithContext(ctx).Model(&Appointment{}).
		Where("id = ?", id).
		Update(col, true)
	if res.Error != nil {
		return fmt.Errorf("mark reminder sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func (s *Store) FindDoctor(ctx context.Context, id uuid.UUID) (*store.Doctor, error) {
	var row Employee
	err := s.db.WithContext(ctx).Preload("Person").
		First(&row, "id = ? AND role = ?", id, store.RoleDoctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return doctorToDomain(&row), nil
}

func (s *Store) FindPatient(ctx context.Context, id uuid.UUID) (*store.Person, error) {
	var row Person
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return personToDomain(&row), nil
}

func (s *Store) ListActiveDoctors(ctx context.Context) ([]*store.Doctor, error) {
	var rows []Employee
	err := s.db.WithContext(ctx).Preload("Person").
		Where("role = ? AND active = ?", store.RoleDoctor, true).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active doctors: %w", err)
	}

	out := make([]*store.Doctor, len(rows))
	for i := range rows {
		out[i] = doctorToDomain(&rows[i])
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// RecordStore
// ---------------------------------------------------------------------------

func (s *Store) EnsureDoctorLink(ctx context.Context, patientID, doctorID uuid.UUID) error {
	link := RecordDoctor{PatientID: patientID, DoctorID: doctorID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
	if err != nil {
		return fmt.Errorf("ensure doctor link: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------------

func reminderColumn(class string) (string, bool) {
	switch class {
	case "24h":
		return "reminder24h_sent", true
	case "1h":
		return "reminder1h_sent", true
	default:
		return "", false
	}
}

// mapUniqueViolation translates a Postgres 23505 on one of the partial
// unique indexes into the corresponding slot-taken error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, doctorSlotIndex):
		return store.ErrDoctorSlotTaken
	case strings.Contains(pgErr.ConstraintName, patientSlotIndex):
		return store.ErrPatientSlotTaken
	}
	return nil
}

func toDomain(r *Appointment) *store.Appointment {
	return &store.Appointment{
		ID:        r.ID,
		Date:      r.Date,
		Slot:      catalog.Slot(r.Slot),
		Status:    store.Status(r.Status),
		PatientID: r.PatientID,
		DoctorID:  r.DoctorID,
		ServiceID: r.ServiceID,
		RemindersSent: map[string]bool{
			"24h": r.Reminder24hSent,
			"1h":  r.Reminder1hSent,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromDomain(a *store.Appointment) *Appointment {
	return &Appointment{
		Base:            Base{ID: a.ID},
		Date:            a.Date,
		Slot:            string(a.Slot),
		Status:          string(a.Status),
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		ServiceID:       a.ServiceID,
		Reminder24hSent: a.RemindersSent["24h"],
		Reminder1hSent:  a.RemindersSent["1h"],
	}
}

func personToDomain(r *Person) *store.Person {
	return &store.Person{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

func doctorToDomain(r *Employee) *store.Doctor {
	d := &store.Doctor{ID: r.ID, Role: r.Role, Active: r.Active}
	if r.Person != nil {
		d.Person = personToDomain(r.Person)
	}
	return d
}
