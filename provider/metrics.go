package provider

import (
	"errors"
	"time"

	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for every dispatched payment
const (
	OutcomeSuccess        = "success"
	OutcomeValidation     = "validation_error"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeTransportError = "transport_error"
	OutcomeConfigError    = "config_error"
	OutcomeDispatchError  = "dispatch_error"
	OutcomeUnknownError   = "error"
)

// Metrics collects payment dispatch counters and latencies
type Metrics struct {
	mPayments *prometheus.CounterVec
	mDuration *prometheus.HistogramVec
}

// NewMetrics creates the payment metrics. Register the result with a
// prometheus.Registerer to expose it.
func NewMetrics() *Metrics {
	return &Metrics{
		mPayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paybridge_payments_total",
			Help: "Number of dispatched payments by provider and outcome.",
		}, []string{"provider", "outcome"}),
		mDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paybridge_payment_duration_seconds",
			Help:    "Duration of a payment including every upstream call.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"provider"}),
	}
}

// Observe records one payment attempt
func (m *Metrics) Observe(providerName string, err error, elapsed time.Duration) {
	m.mPayments.WithLabelValues(providerName, Outcome(err)).Inc()
	if err == nil || !errors.As(err, new(*DispatchError)) {
		m.mDuration.WithLabelValues(providerName).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.mPayments.Describe(ch)
	m.mDuration.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.mPayments.Collect(ch)
	m.mDuration.Collect(ch)
}

// Outcome classifies a payment error into a metric label
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, new(*validate.Error)):
		return OutcomeValidation
	case errors.As(err, new(*UpstreamError)):
		return OutcomeUpstreamError
	case errors.As(err, new(*TransportError)):
		return OutcomeTransportError
	case errors.As(err, new(*ConfigError)):
		return OutcomeConfigError
	case errors.As(err, new(*DispatchError)):
		return OutcomeDispatchError
	}
	return OutcomeUnknownError
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
