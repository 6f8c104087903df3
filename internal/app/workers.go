package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/ovall/dentavia_backend/config"
	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/internal/service/reminder"
	"github.com/ovall/dentavia_backend/internal/store"
	"github.com/ovall/dentavia_backend/pkg/email"
	svcsms "github.com/ovall/dentavia_backend/pkg/sms"
)

// WorkerModule registers the reminder sweep loop and the delivery worker.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc    fx.Lifecycle
	Cfg   *config.Config
	NC    *nats.Conn
	Redis *redis.Client
	Appts store.AppointmentStore
	Dir   store.Directory
	Email *email.Client
	SMS   *svcsms.Client
}

func RegisterWorkers(p WorkerParams) {
	if !p.Cfg.Reminder.Enabled {
		slog.Info("reminder dispatcher disabled")
		startDeliveryWorker(p.NC, p.Email, p.SMS)
		startConfirmationWorker(p.NC, p.Dir, p.Email)
		return
	}

	dispatcher := reminder.New(
		p.Appts,
		p.Dir,
		reminder.NewNATSSender(p.NC),
		reminder.NewRedisLocker(p.Redis, lockTTL(p.Cfg)),
		windowsFromConfig(p.Cfg),
	)

	stopped := make(chan struct{})
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			startDeliveryWorker(p.NC, p.Email, p.SMS)
			startConfirmationWorker(p.NC, p.Dir, p.Email)
			go runSweepLoop(dispatcher, p.Cfg.Reminder, stopped)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stopped)
			return nil
		},
	})
}

func windowsFromConfig(cfg *config.Config) []reminder.Window {
	out := make([]reminder.Window, 0, len(cfg.Reminder.Windows))
	for _, w := range cfg.Reminder.Windows {
		out = append(out, reminder.Window{
			Class:     w.Class,
			FromHours: w.FromHours,
			ToHours:   w.ToHours,
		})
	}
	return out
}

func lockTTL(cfg *config.Config) time.Duration {
	if cfg.Reminder.LockTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(cfg.Reminder.LockTTLSeconds) * time.Second
}

func runSweepLoop(d *reminder.Dispatcher, cfg config.ReminderConfig, stopped <-chan struct{}) {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		sent, err := d.Sweep(ctx)
		if err != nil {
			slog.Error("reminder sweep failed", "err", err)
		}
		if sent > 0 {
			slog.Info("reminder sweep complete", "sent", sent)
		}
	}

	if cfg.RunOnStart {
		sweep()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-stopped:
			return
		}
	}
}

// ---------------------------------------------------------------------------
// delivery_worker
// ---------------------------------------------------------------------------

// natsSubscriber is the slice of *nats.Conn the workers consume through.
type natsSubscriber interface {
	QueueSubscribe(subj, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Queue groups keep each job/event on exactly one replica; a plain
// subscription would deliver a copy to every running instance.
const (
	deliveryQueue     = "delivery"
	confirmationQueue = "confirmation"
)

// startDeliveryWorker consumes queued reminder jobs and fans them out over
// the email and SMS channels.
func startDeliveryWorker(nc natsSubscriber, emailClient *email.Client, smsClient *svcsms.Client) {
	_, err := nc.QueueSubscribe(reminder.SubjectSend, deliveryQueue, func(msg *nats.Msg) {
		var job reminder.Job
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			slog.Warn("delivery_worker: bad job payload", "err", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if job.Email != "" {
			m := email.BuildReminderEmail(email.ReminderEmailData{
				FirstName: job.FirstName,
				Email:     job.Email,
				Date:      job.Date,
				Time:      job.Time,
			}, job.Class)
			if err := emailClient.Send(ctx, m); err != nil {
				slog.Warn("delivery_worker: email send failed", "appointment", job.AppointmentID, "err", err)
			}
		}

		if job.Phone != "" && smsClient.IsEnabled() {
			phone, err := smsClient.NormalizePhone(job.Phone)
			if err != nil {
				slog.Warn("delivery_worker: unusable phone", "appointment", job.AppointmentID, "err", err)
				return
			}
			if err := smsClient.SendReminder(ctx, phone, job.FirstName, job.Date, job.Time); err != nil {
				slog.Warn("delivery_worker: sms send failed", "appointment", job.AppointmentID, "err", err)
			}
		}
	})
	if err != nil {
		slog.Error("delivery_worker: subscribe failed", "err", err)
	}
}

// ---------------------------------------------------------------------------
// confirmation_worker
// ---------------------------------------------------------------------------

// startConfirmationWorker emails the patient when their appointment is
// confirmed, driven by the broadcast event.
func startConfirmationWorker(nc natsSubscriber, dir store.Directory, emailClient *email.Client) {
	_, err := nc.QueueSubscribe(notify.SubjectAll, confirmationQueue, func(msg *nats.Msg) {
		var env struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg.Data, &env); err != nil || env.Event != notify.EventAppointmentConfirmed {
			return
		}

		var appt store.Appointment
		if err := json.Unmarshal(env.Payload, &appt); err != nil {
			slog.Warn("confirmation_worker: bad payload", "err", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		patient, err := dir.FindPatient(ctx, appt.PatientID)
		if err != nil {
			slog.Warn("confirmation_worker: patient lookup failed", "patient", appt.PatientID, "err", err)
			return
		}
		if patient.Email == "" {
			return
		}

		m := email.BuildConfirmationEmail(email.ReminderEmailData{
			FirstName: patient.FirstName,
			Email:     patient.Email,
			Date:      appt.Date,
			Time:      string(appt.Slot),
		})
		if err := emailClient.Send(ctx, m); err != nil {
			slog.Warn("confirmation_worker: email send failed", "appointment", appt.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("confirmation_worker: subscribe failed", "err", err)
	}
}
