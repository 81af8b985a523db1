package aci

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
	"github.com/shopspring/decimal"
)

const (
	// ProviderName is the identifier ACI is registered under
	ProviderName = "aci"

	// DefaultCurrency is used when no currency is configured
	DefaultCurrency = "EUR"

	paymentTypePreAuthorization = "PA"
	paymentTypeCapture          = "CP"
)

// Config holds the ACI (Open Payment Platform) settings
type Config struct {
	APIURL   string
	AuthKey  string
	EntityID string
	Currency string
	Timeout  time.Duration
}

// ConfigFromMap converts a provider configuration map into a Config
func ConfigFromMap(conf map[string]string) Config {
	currency := strings.ToUpper(strings.TrimSpace(conf["currency"]))
	if currency == "" {
		currency = DefaultCurrency
	}

	return Config{
		APIURL:   strings.TrimRight(strings.TrimSpace(conf["apiUrl"]), "/"),
		AuthKey:  strings.TrimSpace(conf["authKey"]),
		EntityID: strings.TrimSpace(conf["entityId"]),
		Currency: currency,
		Timeout:  provider.TimeoutFromConfig(conf),
	}
}

func (c Config) asMap() map[string]string {
	return map[string]string{
		"apiUrl":   c.APIURL,
		"authKey":  c.AuthKey,
		"entityId": c.EntityID,
		"currency": c.Currency,
	}
}

// Validate reports the first missing or malformed setting as a *provider.ConfigError
func (c Config) Validate() error {
	return provider.ValidateConfigFields(ProviderName, c.asMap(), requiredConfig())
}

func requiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "apiUrl",
			Required:    true,
			Type:        "url",
			Description: "ACI payments endpoint",
			Example:     "https://eu-test.oppwa.com/v1/payments",
		},
		{
			Key:         "authKey",
			Required:    true,
			Type:        "string",
			Description: "Bearer token issued for the entity",
			Example:     "OGE4Mjk0MTc0YjdlY2IyODAxNGI5Njk5MjIwMDE1Y2N8c3k2S0pzVDg=",
		},
		{
			Key:         "entityId",
			Required:    true,
			Type:        "string",
			Description: "Entity the payments are booked on",
			Example:     "8a8294174b7ecb28014b9699220015ca",
		},
		{
			Key:         "currency",
			Required:    false,
			Type:        "string",
			Description: "Currency every payment is authorized and captured in",
			Example:     DefaultCurrency,
			Pattern:     "^[A-Z]{3}$",
		},
	}
}

// ACIProvider pre-authorizes a payment and captures it in a second request
type ACIProvider struct {
	config     Config
	httpClient *provider.ProviderHTTPClient
}

// NewProvider creates an ACI provider from a configuration map
func NewProvider(conf map[string]string) provider.PaymentProvider {
	return New(ConfigFromMap(conf))
}

// New creates an ACI provider
func New(cfg Config) *ACIProvider {
	return &ACIProvider{
		config:     cfg,
		httpClient: provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(cfg.APIURL, cfg.Timeout)),
	}
}

// GetRequiredConfig returns the configuration fields required for ACI
func (p *ACIProvider) GetRequiredConfig() []provider.ConfigField {
	return requiredConfig()
}

// ValidateConfig validates the configuration the provider was created with
func (p *ACIProvider) ValidateConfig() error {
	return p.config.Validate()
}

// CreatePayment pre-authorizes the amount and captures it. A failed capture
// is not reversed; the returned error carries the phase so callers can tell
// that an authorization hold may remain on the card.
func (p *ACIProvider) CreatePayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	f, err := p.newFlow(ctx, request)
	if err != nil {
		return nil, err
	}

	if state := f.run(ctx); state != StateCaptured {
		return nil, f.err
	}
	return f.result, nil
}

// preAuthorizationForm builds the phase one form from the request
func (p *ACIProvider) preAuthorizationForm(request provider.PaymentRequest) (url.Values, error) {
	number := validate.NormalizeCardNumber(request.CardNumber)
	brand := validate.CardBrand(number)
	if brand == "" {
		return nil, &validate.Error{Reason: validate.ReasonInvalidCard}
	}

	amount, err := formatAmount(request.Amount)
	if err != nil {
		return nil, &validate.Error{Reason: validate.ReasonInvalidCurrency}
	}

	form := url.Values{}
	form.Set("entityId", p.config.EntityID)
	form.Set("amount", amount)
	form.Set("currency", p.config.Currency)
	form.Set("paymentBrand", brand)
	form.Set("paymentType", paymentTypePreAuthorization)
	form.Set("card.number", number)
	if holder := strings.TrimSpace(request.CardHolder); holder != "" {
		form.Set("card.holder", holder)
	}
	form.Set("card.expiryMonth", formatMonth(request.CardExpMonth))
	form.Set("card.expiryYear", strings.TrimSpace(request.CardExpYear))
	form.Set("card.cvv", request.CardCVV)
	return form, nil
}

func (p *ACIProvider) captureForm(preAuth *paymentResponse) url.Values {
	currency := preAuth.Currency
	if currency == "" {
		currency = p.config.Currency
	}

	form := url.Values{}
	form.Set("entityId", p.config.EntityID)
	form.Set("amount", preAuth.Amount)
	form.Set("paymentType", paymentTypeCapture)
	form.Set("currency", currency)
	return form
}

func (p *ACIProvider) send(ctx context.Context, endpoint string, form url.Values) (*provider.HTTPResponse, error) {
	return p.httpClient.SendForm(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Headers:  map[string]string{"Authorization": "Bearer " + p.config.AuthKey},
		FormData: form,
	})
}

// formatAmount renders the amount with the two decimals ACI expects
func formatAmount(amount string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", err
	}
	return d.StringFixed(2), nil
}

func formatMonth(month string) string {
	month = strings.TrimSpace(month)
	m, err := strconv.Atoi(month)
	if err != nil {
		return month
	}
	return fmt.Sprintf("%02d", m)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.000-0700",
	"2006-01-02 15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp reads the timestamp format used by ACI, e.g. "2024-03-26 11:15:48.456+0000"
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
