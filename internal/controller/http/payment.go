package http

import (
	"github.com/gofiber/fiber/v2"

	"tutorbook_backend/internal/model"
	"tutorbook_backend/internal/service"
)

type createPaymentRequest struct {
	ReservationID int64  `json:"reservation_id" validate:"required,gt=0"`
	Method        string `json:"method" validate:"required,oneof=cash online_gateway"`
}

func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	var req createPaymentRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.payments.CreatePayment(c.Context(), actorFrom(c), req.ReservationID, model.PaymentMethod(req.Method))
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, p)
}

func (h *Handler) ConfirmCashPayment(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.payments.ConfirmCashPayment(c.Context(), actorFrom(c), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, p)
}

type gatewayCallbackRequest struct {
	Result string `json:"result" validate:"required,oneof=completed cancelled"`
}

// GatewayCallback is called by the payment provider, not by end users, so
// it sits outside the actor middleware. The deployment restricts it to the
// provider's network.
func (h *Handler) GatewayCallback(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req gatewayCallbackRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	p, err := h.payments.HandleGatewayCallback(c.Context(), id, service.GatewayResult(req.Result))
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, p)
}

func (h *Handler) IsPayable(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	payable, err := h.payments.IsPayable(c.Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"payable": payable})
}
