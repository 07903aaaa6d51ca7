package transport

import (
	"net/http"

	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/middleware"
	"pasalmart-be/internal/payment/webhook"
	"pasalmart-be/internal/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface. The gateway callback is the
// only unauthenticated route: it arrives from the buyer's browser
// without our session and trusts the HMAC signature instead.
func NewRouter(handler *Handler, hook *webhook.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.AuthMiddleware)
	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/payment/esewa/callback", hook.EsewaCallbackHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/checkout", handler.Checkout)
		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Post("/orders/{id}/cancel", handler.CancelOrder)

		r.With(middleware.RequireRole(utils.RoleSeller, utils.RoleAdmin)).
			Patch("/orders/{id}/fulfillment", handler.UpdateFulfillment)
	})

	return r
}
