package handler

import (
	"net/http"
	"time"

	"github.com/mstgnz/paybridge/infra/response"
	"github.com/mstgnz/paybridge/provider"
)

// ProviderStatusLister reports the configuration state of the configured providers
type ProviderStatusLister interface {
	ProviderStatuses() []provider.ProviderStatus
}

// HealthHandler handles health check requests
type HealthHandler struct {
	service     ProviderStatusLister
	version     string
	environment string
	startTime   time.Time
	now         func() time.Time
}

// HealthStatus represents overall service health. It never carries
// configuration values.
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Environment string                    `json:"environment"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Providers   []provider.ProviderStatus `json:"providers"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service ProviderStatusLister, version, environment string) *HealthHandler {
	return &HealthHandler{
		service:     service,
		version:     version,
		environment: environment,
		startTime:   time.Now(),
		now:         time.Now,
	}
}

// CheckHealth handles GET /health. The service is "degraded" while any
// provider lacks configuration; the status code stays 200 since the
// process itself is serving.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	status := HealthStatus{
		Status:      "healthy",
		Version:     h.version,
		Environment: h.environment,
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(h.startTime).Round(time.Second).String(),
		Providers:   h.service.ProviderStatuses(),
	}

	for _, p := range status.Providers {
		if !p.Configured {
			status.Status = "degraded"
			break
		}
	}

	response.WriteJSON(w, http.StatusOK, status)
}
