package aci

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/provider"
)

// State is a step of the pre-authorize and capture sequence
type State int

const (
	StateStart State = iota
	StatePreAuthorized
	StateCaptured
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePreAuthorized:
		return "pre_authorized"
	case StateCaptured:
		return "captured"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Phase names reported on errors
const (
	PhasePreAuthorization = "pre-authorization"
	PhaseCapture          = "capture"
)

type paymentResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Timestamp string `json:"timestamp"`
	Card      struct {
		Bin string `json:"bin"`
	} `json:"card"`
}

// flow carries one payment through the state machine
type flow struct {
	p         *ACIProvider
	requestID string
	form      url.Values
	log       *logger.ContextLogger
	state     State
	phase     string
	auth      *paymentResponse
	result    *provider.PaymentResult
	err       error
}

func (p *ACIProvider) newFlow(ctx context.Context, request provider.PaymentRequest) (*flow, error) {
	form, err := p.preAuthorizationForm(request)
	if err != nil {
		return nil, err
	}

	requestID := provider.RequestIDFromContext(ctx)
	return &flow{
		p:         p,
		requestID: requestID,
		form:      form,
		log:       logger.WithProvider(ProviderName).SetRequestID(requestID),
		state:     StateStart,
	}, nil
}

// run advances the flow until it reaches a terminal state
func (f *flow) run(ctx context.Context) State {
	for {
		var next State
		switch f.state {
		case StateStart:
			next = f.preAuthorize(ctx)
		case StatePreAuthorized:
			next = f.capture(ctx)
		default:
			return f.state
		}

		logger.Debug("Payment state changed", logger.LogContext{
			Provider:  ProviderName,
			RequestID: f.requestID,
			Fields:    map[string]any{"from": f.state.String(), "to": next.String()},
		})
		f.state = next
	}
}

func (f *flow) preAuthorize(ctx context.Context) State {
	f.phase = PhasePreAuthorization

	auth, err := f.call(ctx, "", f.form)
	if err != nil {
		return f.fail(err)
	}
	if auth.ID == "" {
		return f.fail(f.transportError(fmt.Errorf("pre-authorization response has no id")))
	}

	f.auth = auth
	f.log.AddField("authorization_id", auth.ID).Debug("Payment pre-authorized")
	return StatePreAuthorized
}

func (f *flow) capture(ctx context.Context) State {
	f.phase = PhaseCapture

	captured, err := f.call(ctx, url.PathEscape(f.auth.ID), f.p.captureForm(f.auth))
	if err != nil {
		f.log.Warn("Capture failed after pre-authorization, hold remains")
		return f.fail(err)
	}

	occurredAt, err := parseTimestamp(captured.Timestamp)
	if err != nil {
		f.log.AddField("timestamp", captured.Timestamp).Warn("Capture timestamp could not be parsed, using local time")
		occurredAt = time.Now().UTC()
	}

	// amount and currency are the ones the pre-authorization reported
	currency := f.auth.Currency
	if currency == "" {
		currency = f.p.config.Currency
	}

	f.result = &provider.PaymentResult{
		TransactionID: captured.ID,
		OccurredAt:    occurredAt,
		Amount:        f.auth.Amount,
		Currency:      currency,
		CardBIN:       f.auth.Card.Bin,
	}
	return StateCaptured
}

// call performs the request of the current phase and decodes a successful response
func (f *flow) call(ctx context.Context, endpoint string, form url.Values) (*paymentResponse, error) {
	resp, err := f.p.send(ctx, endpoint, form)
	if err != nil {
		return nil, f.transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.UpstreamError{
			Provider:   ProviderName,
			Phase:      f.phase,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	var decoded paymentResponse
	if err := f.p.httpClient.ParseJSONResponse(resp, &decoded); err != nil {
		return nil, f.transportError(fmt.Errorf("failed to decode %s response: %w", f.phase, err))
	}
	return &decoded, nil
}

func (f *flow) transportError(err error) *provider.TransportError {
	return &provider.TransportError{Provider: ProviderName, Phase: f.phase, Err: err}
}

func (f *flow) fail(err error) State {
	f.err = err
	f.log.AddField("phase", f.phase).Error("ACI request failed", err)
	return StateFailed
}
