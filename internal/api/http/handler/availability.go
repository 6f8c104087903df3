package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/catalog"
	"github.com/ovall/dentavia_backend/internal/service/availability"
)

type AvailabilityHandler struct {
	svc availability.Service
}

func NewAvailabilityHandler(svc availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func mapAvailabilityError(c fiber.Ctx, err error) error {
	if errors.Is(err, availability.ErrInvalidDate) {
		return badRequest(c, err.Error())
	}
	return internalError(c)
}

// GET /appointments/slots
func (h *AvailabilityHandler) Catalog(c fiber.Ctx) error {
	return ok(c, catalog.All())
}

// GET /appointments/available-slots?doctor_id=&date=
func (h *AvailabilityHandler) FreeSlots(c fiber.Ctx) error {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date query parameter is required")
	}

	slots, err := h.svc.FreeSlots(c.Context(), doctorID, date)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, slots)
}

// GET /appointments/available-doctors?date=
func (h *AvailabilityHandler) AvailableDoctors(c fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date query parameter is required")
	}

	doctors, err := h.svc.DoctorsWithAvailability(c.Context(), date)
	if err != nil {
		return mapAvailabilityError(c, err)
	}
	return ok(c, doctors)
}
