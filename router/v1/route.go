package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/paybridge/handler"
	"github.com/mstgnz/paybridge/infra/middle"
)

// Dependencies are the collaborators of the v1 API. A nil RateLimiter
// disables the per-client payment limit.
type Dependencies struct {
	Payments    handler.PaymentServiceInterface
	Validator   handler.PaymentValidator
	RateLimiter *middle.RateLimiter
}

// Routes registers all v1 API routes
func Routes(r chi.Router, deps Dependencies) {
	paymentHandler := handler.NewPaymentHandler(deps.Payments, deps.Validator)

	r.Route("/payments", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(middle.RateLimitMiddleware(deps.RateLimiter))
		}
		r.Post("/{provider}", paymentHandler.ProcessPayment)
	})
}
