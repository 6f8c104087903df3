// Package notify is the realtime fan-out gateway. Events are published as
// JSON envelopes over NATS; live staff sessions receive them through the
// SSE bridge in the HTTP layer.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Appointment lifecycle events carried over the gateway.
const (
	EventAppointmentCreated   = "appointmentCreated"
	EventAppointmentUpdated   = "appointmentUpdated"
	EventAppointmentCancelled = "appointmentCancelled"
	EventAppointmentConfirmed = "appointmentConfirmed"
	EventAppointmentReminder  = "appointmentReminder"
)

// Envelope is the wire format for every gateway event.
type Envelope struct {
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Gateway delivers events to connected sessions. Delivery is best-effort:
// callers treat failures as log-and-continue, never as operation failures.
type Gateway interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, event string, payload any) error
	NotifyAll(ctx context.Context, event string, payload any) error
}

// SubjectUser returns the per-user NATS subject.
func SubjectUser(userID uuid.UUID) string {
	return "dentavia.notify.user." + userID.String()
}

// SubjectAll is the broadcast NATS subject.
const SubjectAll = "dentavia.notify.all"

// SubjectUserWildcard subscribes to every per-user subject.
const SubjectUserWildcard = "dentavia.notify.user.*"

type natsGateway struct {
	nc *nats.Conn
}

// NewNATS returns a Gateway publishing over the given NATS connection.
func NewNATS(nc *nats.Conn) Gateway {
	return &natsGateway{nc: nc}
}

func (g *natsGateway) NotifyUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	return g.publish(SubjectUser(userID), event, payload)
}

func (g *natsGateway) NotifyAll(ctx context.Context, event string, payload any) error {
	return g.publish(SubjectAll, event, payload)
}

func (g *natsGateway) publish(subject, event string, payload any) error {
	data, err := json.Marshal(Envelope{
		Event:   event,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := g.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
