package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/pkg/reqctx"
)

const (
	HeaderRequestID = "X-Request-Id"
	LocalRequestID  = "request_id"
	localMeta       = "request_meta"
)

// RequestID preserves an incoming request id or generates one, echoes it
// back to the client and captures per-request metadata in locals.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(LocalRequestID, rid)
		c.Set(HeaderRequestID, rid)
		c.Request().Header.Set(HeaderRequestID, rid)

		meta := &reqctx.RequestMeta{
			RequestID:   rid,
			ClientIP:    c.IP(),
			UserAgent:   c.Get("User-Agent"),
			RequestedAt: time.Now(),
		}
		c.Locals(localMeta, meta)
		c.SetContext(reqctx.WithRequestMeta(c.Context(), meta))

		return c.Next()
	}
}

// RequestIDFromFiber retrieves the request id from Fiber locals.
func RequestIDFromFiber(c fiber.Ctx) (string, bool) {
	s, ok := c.Locals(LocalRequestID).(string)
	return s, ok && s != ""
}

// RequestMetaFromFiber retrieves the request metadata from Fiber locals.
func RequestMetaFromFiber(c fiber.Ctx) (*reqctx.RequestMeta, bool) {
	meta, ok := c.Locals(localMeta).(*reqctx.RequestMeta)
	return meta, ok && meta != nil
}
