package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/paybridge/handler"
	"github.com/mstgnz/paybridge/infra/middle"
	v1 "github.com/mstgnz/paybridge/router/v1"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PaymentService is what the HTTP API needs from the payment dispatcher
type PaymentService interface {
	handler.PaymentServiceInterface
	handler.ProviderStatusLister
}

// Options configures the HTTP API. /metrics serves Gatherer, or the
// default prometheus registry when it is nil.
type Options struct {
	Service     PaymentService
	Validator   handler.PaymentValidator
	RateLimiter *middle.RateLimiter
	Gatherer    prometheus.Gatherer
	APIKey      string
	Version     string
	Environment string
}

// Routes mounts the health, metrics and v1 API endpoints on r
func Routes(r chi.Router, opts Options) {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	healthHandler := handler.NewHealthHandler(opts.Service, opts.Version, opts.Environment)

	r.Use(middle.SecurityHeadersMiddleware())

	r.Get("/health", healthHandler.CheckHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middle.AuthMiddleware(opts.APIKey))
		r.Use(middle.RequestValidationMiddleware())

		r.Route("/v1", func(r chi.Router) {
			v1.Routes(r, v1.Dependencies{
				Payments:    opts.Service,
				Validator:   opts.Validator,
				RateLimiter: opts.RateLimiter,
			})
		})
	})
}
