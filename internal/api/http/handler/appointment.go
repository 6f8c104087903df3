package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ovall/dentavia_backend/internal/service/appointment"
	"github.com/ovall/dentavia_backend/pkg/reqctx"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// sendResult maps a scheduler result to an HTTP status and returns the
// tagged result as the body, so clients can branch on the stable code.
func sendResult(c fiber.Ctx, res appointment.Result, successStatus int) error {
	status := successStatus
	switch res.Code {
	case appointment.CodeOK:
	case appointment.CodeAppointmentNotFound,
		appointment.CodeDoctorNotFound,
		appointment.CodePatientNotFound:
		status = fiber.StatusNotFound
	case appointment.CodeInvalidDate, appointment.CodeInvalidSlot:
		status = fiber.StatusBadRequest
	case appointment.CodePastDate:
		status = fiber.StatusUnprocessableEntity
	case appointment.CodeDoctorSlotTaken,
		appointment.CodePatientSlotTaken,
		appointment.CodeTerminalState:
		status = fiber.StatusConflict
	default:
		status = fiber.StatusInternalServerError
		slog.Error("appointment operation failed",
			"code", res.Code,
			"request_id", reqctx.RequestIDFromContext(c.Context()),
			"trace_id", reqctx.TraceIDFromContext(c.Context()))
	}
	return c.Status(status).JSON(res)
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	var body struct {
		Date      string `json:"date"`
		Slot      string `json:"slot"`
		PatientID string `json:"patient_id"`
		DoctorID  string `json:"doctor_id"`
		ServiceID string `json:"service_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	patientID, err := uuid.Parse(body.PatientID)
	if err != nil {
		return badRequest(c, "invalid patient_id")
	}
	doctorID, err := uuid.Parse(body.DoctorID)
	if err != nil {
		return badRequest(c, "invalid doctor_id")
	}
	serviceID, err := uuid.Parse(body.ServiceID)
	if err != nil {
		return badRequest(c, "invalid service_id")
	}

	res := h.svc.Create(c.Context(), appointment.CreateRequest{
		Date:      body.Date,
		Slot:      body.Slot,
		PatientID: patientID,
		DoctorID:  doctorID,
		ServiceID: serviceID,
	})
	return sendResult(c, res, fiber.StatusCreated)
}

// PUT /appointments/:id
func (h *AppointmentHandler) Update(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Date      *string `json:"date"`
		Slot      *string `json:"slot"`
		DoctorID  *string `json:"doctor_id"`
		ServiceID *string `json:"service_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := appointment.UpdateRequest{Date: body.Date, Slot: body.Slot}
	if body.DoctorID != nil {
		doctorID, err := uuid.Parse(*body.DoctorID)
		if err != nil {
			return badRequest(c, "invalid doctor_id")
		}
		req.DoctorID = &doctorID
	}
	if body.ServiceID != nil {
		serviceID, err := uuid.Parse(*body.ServiceID)
		if err != nil {
			return badRequest(c, "invalid service_id")
		}
		req.ServiceID = &serviceID
	}

	return sendResult(c, h.svc.Update(c.Context(), id, req), fiber.StatusOK)
}

// GET /appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	return sendResult(c, h.svc.Get(c.Context(), id), fiber.StatusOK)
}

// PATCH /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	return sendResult(c, h.svc.Cancel(c.Context(), id), fiber.StatusOK)
}

// PATCH /appointments/:id/confirm
func (h *AppointmentHandler) Confirm(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}
	return sendResult(c, h.svc.Confirm(c.Context(), id), fiber.StatusOK)
}

// GET /appointments?date=
func (h *AppointmentHandler) ListByDate(c fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date query parameter is required")
	}

	appts, err := h.svc.ListByDate(c.Context(), date)
	if err != nil {
		if errors.Is(err, appointment.ErrInvalidDate) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return ok(c, appts)
}

// GET /appointments/patient/:id
func (h *AppointmentHandler) ListByPatient(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid patient id")
	}

	appts, err := h.svc.ListByPatient(c.Context(), id)
	if err != nil {
		return internalError(c)
	}
	return ok(c, appts)
}

// GET /appointments/doctor/:id
func (h *AppointmentHandler) ListByDoctor(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid doctor id")
	}

	appts, err := h.svc.ListByDoctor(c.Context(), id)
	if err != nil {
		return internalError(c)
	}
	return ok(c, appts)
}
