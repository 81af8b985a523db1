package provider

import (
	"context"
	"encoding/json"
	"time"
)

// DateLayout is the timestamp format used in payment results
const DateLayout = "2006-01-02 15:04:05"

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "url", "number", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// PaymentRequest contains the normalized payment input. All values are kept
// as received and are not modified after validation.
type PaymentRequest struct {
	Provider     string `json:"provider,omitempty"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	CardNumber   string `json:"card_number"`
	CardExpMonth string `json:"card_exp_month"`
	CardExpYear  string `json:"card_exp_year"`
	CardCVV      string `json:"card_cvv"`
	CardHolder   string `json:"card_holder,omitempty"`
}

// PaymentResult is the provider independent outcome of a successful payment
type PaymentResult struct {
	TransactionID string    `json:"transaction_id"`
	OccurredAt    time.Time `json:"-"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	CardBIN       string    `json:"card_bin"`
}

// MarshalJSON renders OccurredAt as "date" in DateLayout
func (r PaymentResult) MarshalJSON() ([]byte, error) {
	type result PaymentResult
	return json.Marshal(struct {
		result
		Date string `json:"date"`
	}{
		result: result(r),
		Date:   r.OccurredAt.Format(DateLayout),
	})
}

// PaymentProvider defines the interface that all payment gateways must implement
type PaymentProvider interface {
	// GetRequiredConfig returns the configuration fields required for this provider
	GetRequiredConfig() []ConfigField

	// ValidateConfig checks the configuration the provider was created with
	ValidateConfig() error

	// CreatePayment charges the card described by the request. Upstream
	// rejections, transport failures and configuration faults are returned
	// as *UpstreamError, *TransportError and *ConfigError respectively.
	CreatePayment(ctx context.Context, request PaymentRequest) (*PaymentResult, error)
}

// ProviderFactory creates a PaymentProvider from its configuration. It must
// not fail on incomplete configuration; that is reported by CreatePayment.
type ProviderFactory func(conf map[string]string) PaymentProvider

type requestIDKey struct{}

// WithRequestID attaches a request id to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored in ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TimeoutFromConfig reads the optional "timeout" entry of a provider
// configuration, e.g. "15s". Zero means the HTTP client default.
func TimeoutFromConfig(conf map[string]string) time.Duration {
	d, err := time.ParseDuration(conf[ConfigKeyTimeout])
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ConfigKeyTimeout is the provider configuration key holding the request timeout
const ConfigKeyTimeout = "timeout"
