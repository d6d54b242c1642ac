package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/service"
)

const dateLayout = "2006-01-02"

type createReservationRequest struct {
	TutorID   int64  `json:"tutor_id" validate:"required,gt=0"`
	ServiceID int64  `json:"service_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required"`
	Start     string `json:"start_time" validate:"required"`
	End       string `json:"end_time" validate:"required"`
	Notes     string `json:"notes"`
}

func (h *Handler) CreateReservation(c *fiber.Ctx) error {
	var req createReservationRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	start, err := model.ParseMinuteOfDay(req.Start)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid start_time, expected HH:MM")
	}
	end, err := model.ParseMinuteOfDay(req.End)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid end_time, expected HH:MM")
	}

	res, err := h.reservations.Create(c.Context(), actorFrom(c), service.CreateReservationInput{
		ServiceID: req.ServiceID,
		Date:      date,
		Start:     start,
		End:       end,
		Notes:     req.Notes,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, res)
}

func (h *Handler) ListReservations(c *fiber.Ctx) error {
	actor := actorFrom(c)

	var (
		items []*model.Reservation
		err   error
	)
	if actor.IsTutor() {
		items, err = h.reservations.ListForTutor(c.Context(), actor.UserID)
	} else {
		items, err = h.reservations.ListForStudent(c.Context(), actor.UserID)
	}
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, items)
}

func (h *Handler) GetReservation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.reservations.GetByID(c.Context(), actorFrom(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, res)
}

type transitionRequest struct {
	Target string `json:"target" validate:"required,oneof=confirmed completed cancelled"`
}

func (h *Handler) TransitionReservation(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req transitionRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.reservations.Transition(c.Context(), actorFrom(c), id, model.ReservationState(req.Target))
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, res)
}

func (h *Handler) AvailableDates(c *fiber.Ctx) error {
	tutorID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	serviceID := int64(c.QueryInt("service_id"))
	if serviceID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "service_id query parameter is required")
	}

	dates, err := h.reservations.AvailableDates(c.Context(), tutorID, serviceID, 0)
	if err != nil {
		return h.respondError(c, err)
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(dateLayout))
	}
	return respondData(c, fiber.StatusOK, out)
}

func (h *Handler) AvailableSlots(c *fiber.Ctx) error {
	tutorID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	date, err := time.ParseInLocation(dateLayout, c.Query("date"), h.loc)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	slots, err := h.reservations.AvailableSlots(c.Context(), tutorID, date)
	if err != nil {
		return h.respondError(c, err)
	}

	type slotResponse struct {
		Start string `json:"start_time"`
		End   string `json:"end_time"`
	}
	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{Start: s.Start.String(), End: s.End.String()})
	}
	return respondData(c, fiber.StatusOK, out)
}
