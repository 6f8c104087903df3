package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectSend is the NATS subject the delivery worker consumes.
const SubjectSend = "dentavia.reminder.send"

// Job is the rendered reminder handed to the delivery channel. The
// dispatcher owns timing and at-most-once semantics; the channel only
// formats and transmits.
type Job struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Class         string    `json:"class"`
	FirstName     string    `json:"first_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
}

// Sender transmits a reminder job. A nil error means the job is durably
// handed off and the window flag may be committed.
type Sender interface {
	Send(ctx context.Context, job Job) error
}

type natsSender struct {
	nc *nats.Conn
}

// NewNATSSender queues jobs on SubjectSend for the email/SMS worker.
func NewNATSSender(nc *nats.Conn) Sender {
	return &natsSender{nc: nc}
}

func (s *natsSender) Send(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal reminder job: %w", err)
	}
	if err := s.nc.Publish(SubjectSend, data); err != nil {
		return fmt.Errorf("publish reminder job: %w", err)
	}
	// Flush so the flag is only committed after the broker accepted the job.
	if err := s.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush reminder job: %w", err)
	}
	return nil
}
