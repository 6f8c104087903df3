package handler

import (
	"bufio"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/nats-io/nats.go"
	"github.com/valyala/fasthttp"

	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/pkg/reqctx"
)

const heartbeatInterval = 25 * time.Second

// EventsHandler bridges the NATS notification subjects onto an SSE stream
// for the authenticated session. The gateway stays fire-and-forget; a
// session that is not connected simply misses the event.
type EventsHandler struct {
	nc *nats.Conn
}

func NewEventsHandler(nc *nats.Conn) *EventsHandler {
	return &EventsHandler{nc: nc}
}

// GET /events
func (h *EventsHandler) Stream(c fiber.Ctx) error {
	if !reqctx.IsAuthenticated(c.Context()) {
		return fiber.ErrUnauthorized
	}
	userID, _ := reqctx.UserIDFromContext(c.Context())

	msgs := make(chan *nats.Msg, 64)
	personal, err := h.nc.ChanSubscribe(notify.SubjectUser(userID), msgs)
	if err != nil {
		slog.Error("events subscribe failed", "user", userID, "err", err)
		return internalError(c)
	}
	broadcast, err := h.nc.ChanSubscribe(notify.SubjectAll, msgs)
	if err != nil {
		_ = personal.Unsubscribe()
		slog.Error("events subscribe failed", "user", userID, "err", err)
		return internalError(c)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.RequestCtx().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = personal.Unsubscribe()
			_ = broadcast.Unsubscribe()
		}()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case msg, open := <-msgs:
				if !open {
					return
				}
				if _, err := w.WriteString("data: " + string(msg.Data) + "\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
