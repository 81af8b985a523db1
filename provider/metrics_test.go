package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeValidation, Outcome(&validate.Error{Reason: validate.ReasonInvalidCard}))
	assert.Equal(t, OutcomeUpstreamError, Outcome(&UpstreamError{StatusCode: 402}))
	assert.Equal(t, OutcomeTransportError, Outcome(&TransportError{Err: errors.New("x")}))
	assert.Equal(t, OutcomeConfigError, Outcome(&ConfigError{Field: "apiKey"}))
	assert.Equal(t, OutcomeDispatchError, Outcome(&DispatchError{Provider: "x"}))
	assert.Equal(t, OutcomeUnknownError, Outcome(errors.New("x")))
}

// gatherCounters returns counter values keyed by "provider/outcome" and
// histogram sample counts keyed by provider.
func gatherCounters(t *testing.T, registry *prometheus.Registry) (map[string]float64, map[string]uint64) {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	counters := map[string]float64{}
	samples := map[string]uint64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			switch mf.GetName() {
			case "paybridge_payments_total":
				counters[labels["provider"]+"/"+labels["outcome"]] = m.GetCounter().GetValue()
			case "paybridge_payment_duration_seconds":
				samples[labels["provider"]] = m.GetHistogram().GetSampleCount()
			}
		}
	}
	return counters, samples
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()
	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(m))

	m.Observe("shift4", nil, 120*time.Millisecond)
	m.Observe("shift4", &UpstreamError{StatusCode: 402}, 80*time.Millisecond)
	m.Observe("unknown", &DispatchError{Provider: "stripe"}, 0)

	counters, samples := gatherCounters(t, registry)
	assert.Equal(t, map[string]float64{
		"shift4/success":         1,
		"shift4/upstream_error":  1,
		"unknown/dispatch_error": 1,
	}, counters)
	assert.Equal(t, map[string]uint64{"shift4": 2}, samples, "dispatch errors are not timed")
}
