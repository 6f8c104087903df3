package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ovall/dentavia_backend/internal/api/http/handler"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	avh *handler.AvailabilityHandler,
	authRequired fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	// Static paths before the :id wildcard.
	appts.Get("/slots", avh.Catalog)
	appts.Get("/available-slots", avh.FreeSlots)
	appts.Get("/available-doctors", avh.AvailableDoctors)
	appts.Get("/patient/:id", ah.ListByPatient)
	appts.Get("/doctor/:id", ah.ListByDoctor)

	appts.Get("/", ah.ListByDate)
	appts.Post("/", ah.Create)

	a := appts.Group("/:id")
	a.Get("/", ah.GetByID)
	a.Put("/", ah.Update)
	a.Patch("/cancel", ah.Cancel)
	a.Patch("/confirm", ah.Confirm)
}
