package http

import "github.com/gofiber/fiber/v2"

// RegisterRoutes mounts the API. Everything under /api/v1 requires the
// identity headers except the gateway callback, which is authenticated at
// the network boundary by the provider instead.
func RegisterRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api/v1")

	// Asynchronous payment-provider callback, no actor attached.
	api.Post("/payments/callback/:id", h.GatewayCallback)

	authed := api.Use(RequireActor())

	// Tutor-owned catalog.
	authed.Post("/availabilities", h.CreateAvailability)
	authed.Get("/availabilities", h.ListOwnAvailability)
	authed.Delete("/availabilities/:id", h.DeleteAvailability)

	authed.Post("/services", h.CreateService)
	authed.Put("/services/:id", h.UpdateService)
	authed.Delete("/services/:id", h.DeactivateService)

	// Public-to-students tutor views.
	authed.Get("/tutors/:id/services", h.ListTutorServices)
	authed.Get("/tutors/:id/available-dates", h.AvailableDates)
	authed.Get("/tutors/:id/slots", h.AvailableSlots)

	// Reservation lifecycle.
	authed.Post("/reservations", h.CreateReservation)
	authed.Get("/reservations", h.ListReservations)
	authed.Get("/reservations/:id", h.GetReservation)
	authed.Post("/reservations/:id/transition", h.TransitionReservation)
	authed.Get("/reservations/:id/payable", h.IsPayable)
	authed.Get("/reservations/:id/can-join", h.CanJoin)

	// Payments and ratings.
	authed.Post("/payments", h.CreatePayment)
	authed.Post("/payments/:id/confirm-cash", h.ConfirmCashPayment)
	authed.Post("/ratings", h.CreateRating)
	authed.Get("/users/:id/ratings", h.ListRatings)
}
