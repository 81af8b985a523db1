package shift4

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
	"github.com/shopspring/decimal"
)

const (
	// ProviderName is the identifier Shift4 is registered under
	ProviderName = "shift4"

	phaseCharge = "charge"
)

// Config holds the Shift4 settings
type Config struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

// ConfigFromMap converts a provider configuration map into a Config
func ConfigFromMap(conf map[string]string) Config {
	return Config{
		APIURL:  strings.TrimSpace(conf["apiUrl"]),
		APIKey:  strings.TrimSpace(conf["apiKey"]),
		Timeout: provider.TimeoutFromConfig(conf),
	}
}

func (c Config) asMap() map[string]string {
	return map[string]string{
		"apiUrl": c.APIURL,
		"apiKey": c.APIKey,
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
			Description: "Shift4 charges endpoint",
			Example:     "https://api.shift4.com/charges",
		},
		{
			Key:         "apiKey",
			Required:    true,
			Type:        "string",
			Description: "Shift4 secret key, sent as the basic auth user name",
			Example:     "sk_test_...",
		},
	}
}

// Shift4Provider charges cards with a single Shift4 charge request
type Shift4Provider struct {
	config     Config
	httpClient *provider.ProviderHTTPClient
}

// NewProvider creates a Shift4 provider from a configuration map
func NewProvider(conf map[string]string) provider.PaymentProvider {
	return New(ConfigFromMap(conf))
}

// New creates a Shift4 provider
func New(cfg Config) *Shift4Provider {
	return &Shift4Provider{
		config:     cfg,
		httpClient: provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(cfg.APIURL, cfg.Timeout)),
	}
}

// GetRequiredConfig returns the configuration fields required for Shift4
func (p *Shift4Provider) GetRequiredConfig() []provider.ConfigField {
	return requiredConfig()
}

// ValidateConfig validates the configuration the provider was created with
func (p *Shift4Provider) ValidateConfig() error {
	return p.config.Validate()
}

type chargeRequest struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Card     chargeCard  `json:"card"`
}

type chargeCard struct {
	Number   string `json:"number"`
	ExpMonth string `json:"expMonth"`
	ExpYear  string `json:"expYear"`
	CVC      string `json:"cvc"`
}

type chargeResponse struct {
	ID       string      `json:"id"`
	Created  json.Number `json:"created"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Card     struct {
		First6 string `json:"first6"`
	} `json:"card"`
}

// CreatePayment sends one charge request and maps a 200 response to a PaymentResult
func (p *Shift4Provider) CreatePayment(ctx context.Context, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	if err := p.ValidateConfig(); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(request.Amount))
	if err != nil {
		return nil, &validate.Error{Reason: validate.ReasonInvalidCurrency}
	}

	log := logger.WithProvider(ProviderName).SetRequestID(provider.RequestIDFromContext(ctx))

	resp, err := p.httpClient.SendJSON(ctx, &provider.HTTPRequest{
		Method: http.MethodPost,
		Headers: map[string]string{
			"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(p.config.APIKey+":")),
		},
		Body: chargeRequest{
			Amount:   json.Number(amount.String()),
			Currency: request.Currency,
			Card: chargeCard{
				Number:   validate.NormalizeCardNumber(request.CardNumber),
				ExpMonth: request.CardExpMonth,
				ExpYear:  request.CardExpYear,
				CVC:      request.CardCVV,
			},
		},
	})
	if err != nil {
		return nil, &provider.TransportError{Provider: ProviderName, Phase: phaseCharge, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		log.AddField("status", resp.StatusCode).Warn("Charge rejected")
		return nil, &provider.UpstreamError{
			Provider:   ProviderName,
			Phase:      phaseCharge,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var charge chargeResponse
	if err := p.httpClient.ParseJSONResponse(resp, &charge); err != nil {
		return nil, &provider.TransportError{
			Provider: ProviderName,
			Phase:    phaseCharge,
			Err:      fmt.Errorf("failed to decode charge response: %w", err),
		}
	}

	result, err := charge.toResult()
	if err != nil {
		return nil, &provider.TransportError{Provider: ProviderName, Phase: phaseCharge, Err: err}
	}

	log.AddField("transaction_id", result.TransactionID).Debug("Charge created")
	return result, nil
}

func (c chargeResponse) toResult() (*provider.PaymentResult, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("charge response has no id")
	}

	created, err := c.Created.Int64()
	if err != nil {
		return nil, fmt.Errorf("invalid charge timestamp %q: %w", c.Created, err)
	}

	return &provider.PaymentResult{
		TransactionID: c.ID,
		OccurredAt:    time.Unix(created, 0).UTC(),
		Amount:        c.Amount.String(),
		Currency:      c.Currency,
		CardBIN:       c.Card.First6,
	}, nil
}
