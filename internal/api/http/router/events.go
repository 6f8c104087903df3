package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ovall/dentavia_backend/internal/api/http/handler"
)

func (r *Router) registerEventRoutes(
	api fiber.Router,
	eh *handler.EventsHandler,
	authRequired fiber.Handler,
) {
	api.Get("/events", eh.Stream, authRequired)
}
