package http

import (
	"github.com/gofiber/fiber/v2"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/service"
)

type createAvailabilityRequest struct {
	Weekday int    `json:"weekday" validate:"required,min=1,max=7"`
	Start   string `json:"start_time" validate:"required"`
	End     string `json:"end_time" validate:"required"`
}

func (h *Handler) CreateAvailability(c *fiber.Ctx) error {
	var req createAvailabilityRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	start, err := model.ParseMinuteOfDay(req.Start)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid start_time, expected HH:MM")
	}
	end, err := model.ParseMinuteOfDay(req.End)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid end_time, expected HH:MM")
	}

	a, err := h.tutors.CreateAvailability(c.Context(), actorFrom(c), service.CreateAvailabilityInput{
		Weekday: req.Weekday,
		Start:   start,
		End:     end,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, a)
}

func (h *Handler) ListOwnAvailability(c *fiber.Ctx) error {
	rules, err := h.tutors.ListAvailability(c.Context(), actorFrom(c).UserID)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, rules)
}

func (h *Handler) DeleteAvailability(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tutors.DeleteAvailability(c.Context(), actorFrom(c), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type serviceRequest struct {
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description"`
	Price       int    `json:"price" validate:"min=0"`
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	var req serviceRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	svc, err := h.tutors.CreateService(c.Context(), actorFrom(c), service.ServiceInput{
		Subject:     req.Subject,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req serviceRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	svc, err := h.tutors.UpdateService(c.Context(), actorFrom(c), id, service.ServiceInput{
		Subject:     req.Subject,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, svc)
}

func (h *Handler) DeactivateService(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.tutors.DeactivateService(c.Context(), actorFrom(c), id); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListTutorServices(c *fiber.Ctx) error {
	tutorID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	services, err := h.tutors.ListServices(c.Context(), tutorID)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, services)
}
