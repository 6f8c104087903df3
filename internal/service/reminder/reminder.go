// Package reminder implements the periodic sweep that fires at-most-once
// reminders per window class for pending appointments. The persisted flag is
// the commit point: it is only written after a successful dispatch, so a
// failed send is retried on the next sweep and a set flag is never re-fired.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/store"
)

// Window is one reminder class with its inclusive hours-until band. The band
// is deliberately wider than one hour so an hourly sweep cannot skip over it,
// while the persisted flag keeps the class at-most-once.
type Window struct {
	Class     string
	FromHours int
	ToHours   int
}

// DefaultWindows fires a day-before and an hour-before reminder.
var DefaultWindows = []Window{
	{Class: "24h", FromHours: 23, ToHours: 24},
	{Class: "1h", FromHours: 0, ToHours: 1},
}

type Dispatcher struct {
	appts   store.AppointmentStore
	dir     store.Directory
	sender  Sender
	locker  Locker
	windows []Window
	now     func() time.Time
}

// New builds a dispatcher. locker may be nil, in which case sweeps run
// unguarded (single-process deployments and tests).
func New(appts store.AppointmentStore, dir store.Directory, sender Sender, locker Locker, windows []Window) *Dispatcher {
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	return &Dispatcher{
		appts:   appts,
		dir:     dir,
		sender:  sender,
		locker:  locker,
		windows: windows,
		now:     time.Now,
	}
}

// Sweep runs one pass over all windows and returns the number of reminders
// dispatched. Dispatch failures are logged and left for the next sweep.
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	if d.locker != nil {
		acquired, err := d.locker.Acquire(ctx)
		if err != nil {
			return 0, fmt.Errorf("acquire sweep lease: %w", err)
		}
		if !acquired {
			slog.Debug("reminder sweep skipped, lease held elsewhere")
			return 0, nil
		}
		defer d.locker.Release(ctx)
	}

	sent := 0
	var errs []error
	for _, w := range d.windows {
		n, err := d.sweepWindow(ctx, w)
		sent += n
		if err != nil {
			// One broken window must not starve the others this tick.
			slog.Error("reminder window sweep failed", "class", w.Class, "err", err)
			errs = append(errs, err)
		}
	}
	return sent, errors.Join(errs...)
}

func (d *Dispatcher) sweepWindow(ctx context.Context, w Window) (int, error) {
	appts, err := d.appts.ListPendingForReminder(ctx, w.Class)
	if err != nil {
		return 0, fmt.Errorf("list pending for %s: %w", w.Class, err)
	}

	sent := 0
	for _, a := range appts {
		if a.ReminderSent(w.Class) {
			continue
		}
		hours, ok := d.hoursUntil(a)
		if !ok {
			slog.Warn("appointment has unresolvable schedule", "appointment", a.ID, "date", a.Date, "slot", a.Slot)
			continue
		}
		if hours < w.FromHours || hours > w.ToHours {
			continue
		}

		patient, err := d.dir.FindPatient(ctx, a.PatientID)
		if err != nil {
			slog.Warn("reminder recipient lookup failed", "appointment", a.ID, "patient", a.PatientID, "err", err)
			continue
		}

		job := Job{
			AppointmentID: a.ID,
			Class:         w.Class,
			FirstName:     patient.FirstName,
			Email:         patient.Email,
			Phone:         patient.Phone,
			Date:          a.Date,
			Time:          string(a.Slot),
		}
		if err := d.sender.Send(ctx, job); err != nil {
			slog.Error("reminder dispatch failed", "appointment", a.ID, "class", w.Class, "err", err)
			continue
		}
		if err := d.appts.MarkReminderSent(ctx, a.ID, w.Class); err != nil {
			// The send went out but the flag write failed; the next sweep
			// may duplicate. Surface loudly.
			slog.Error("reminder flag write failed after dispatch", "appointment", a.ID, "class", w.Class, "err", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// hoursUntil computes whole hours between now and the appointment instant,
// flooring the difference. The current time's minute is normalized to the
// slot's minute-of-day so intra-hour jitter cannot shift the band.
func (d *Dispatcher) hoursUntil(a *store.Appointment) (int, bool) {
	day, err := time.Parse(store.DateLayout, a.Date)
	if err != nil {
		return 0, false
	}
	hour, min, ok := catalog.TimeOfDay(a.Slot)
	if !ok {
		return 0, false
	}
	target := time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, time.UTC)

	now := d.now().UTC()
	norm := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), min, 0, 0, time.UTC)

	return int(math.Floor(target.Sub(norm).Hours())), true
}
