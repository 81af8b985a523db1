package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock PaymentService for testing
type mockPaymentService struct {
	processPaymentFunc func(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResult, error)
	calls              int
	lastProvider       string
	lastRequest        provider.PaymentRequest
	lastRequestID      string
}

func (m *mockPaymentService) ProcessPayment(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResult, error) {
	m.calls++
	m.lastProvider = providerName
	m.lastRequest = request
	m.lastRequestID = provider.RequestIDFromContext(ctx)

	if m.processPaymentFunc != nil {
		return m.processPaymentFunc(ctx, providerName, request)
	}
	return &provider.PaymentResult{
		TransactionID: "txn-123",
		OccurredAt:    time.Date(2024, time.March, 26, 11, 15, 48, 0, time.UTC),
		Amount:        request.Amount,
		Currency:      request.Currency,
		CardBIN:       "424242",
	}, nil
}

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestHandler(svc *mockPaymentService) *PaymentHandler {
	return NewPaymentHandler(svc, validate.NewPaymentValidator(
		[]string{"shift4", "aci"},
		validate.WithClock(func() time.Time { return testNow }),
	))
}

func validForm() url.Values {
	return url.Values{
		"amount":         {"92.00"},
		"currency":       {"USD"},
		"card_number":    {"4242424242424242"},
		"card_exp_year":  {"2030"},
		"card_exp_month": {"11"},
		"card_cvv":       {"123"},
	}
}

func postPayment(h *PaymentHandler, providerName string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/"+providerName, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", providerName)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-42")

	w := httptest.NewRecorder()
	h.ProcessPayment(w, req.WithContext(ctx))
	return w
}

func TestPaymentHandler_ProcessPayment_Success(t *testing.T) {
	svc := &mockPaymentService{}
	form := validForm()
	form.Set("card_holder", "Jane Jones")

	w := postPayment(newTestHandler(svc), "shift4", form)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"transaction_id": "txn-123",
		"date": "2024-03-26 11:15:48",
		"amount": "92.00",
		"currency": "USD",
		"card_bin": "424242"
	}`, w.Body.String())

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "shift4", svc.lastProvider)
	assert.Equal(t, "req-42", svc.lastRequestID)
	assert.Equal(t, provider.PaymentRequest{
		Amount:       "92.00",
		Currency:     "USD",
		CardNumber:   "4242424242424242",
		CardExpMonth: "11",
		CardExpYear:  "2030",
		CardCVV:      "123",
		CardHolder:   "Jane Jones",
	}, svc.lastRequest)
}

func TestPaymentHandler_ProcessPayment_JSONBody(t *testing.T) {
	svc := &mockPaymentService{}
	body := `{"amount":"10","currency":"EUR","card_number":"4200000000000000","card_exp_year":"2030","card_exp_month":"01","card_cvv":"999"}`

	req := httptest.NewRequest(http.MethodPost, "/v1/payments/aci", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", "aci")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	newTestHandler(svc).ProcessPayment(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "4200000000000000", svc.lastRequest.CardNumber)
	assert.Equal(t, "01", svc.lastRequest.CardExpMonth)
}

func TestPaymentHandler_ProcessPayment_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		mutate   func(url.Values)
		reason   string
	}{
		{"unknown provider", "stripe", func(url.Values) {}, validate.ReasonInvalidProvider},
		{"missing cvv", "shift4", func(f url.Values) { f.Del("card_cvv") }, validate.ReasonFieldsMissing},
		{"bad card number", "shift4", func(f url.Values) { f.Set("card_number", "4242424242424241") }, validate.ReasonInvalidCard},
		{"expired card", "aci", func(f url.Values) { f.Set("card_exp_year", "2020") }, validate.ReasonInvalidCard},
		{"bad currency", "shift4", func(f url.Values) { f.Set("currency", "XYZ") }, validate.ReasonInvalidCurrency},
		{"zero amount", "shift4", func(f url.Values) { f.Set("amount", "0") }, validate.ReasonInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{}
			form := validForm()
			tt.mutate(form)

			w := postPayment(newTestHandler(svc), tt.provider, form)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.reason, w.Body.String())
			assert.Zero(t, svc.calls, "invalid input must not reach a provider")
		})
	}
}

func TestPaymentHandler_ProcessPayment_PaymentErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   provider.ErrorPayload
	}{
		{
			name:   "upstream",
			err:    &provider.UpstreamError{Provider: "shift4", Phase: "charge", StatusCode: 402, Body: `{"error":"declined"}`},
			status: http.StatusBadGateway,
			want:   provider.ErrorPayload{Error: "API returned error with status 402", Details: `{"error":"declined"}`},
		},
		{
			name:   "transport",
			err:    &provider.TransportError{Provider: "shift4", Phase: "charge", Err: errors.New("i/o timeout")},
			status: http.StatusBadGateway,
			want:   provider.ErrorPayload{Error: "An unexpected error occurred: i/o timeout", Details: provider.MessageNoDetails},
		},
		{
			name:   "config",
			err:    &provider.ConfigError{Provider: "shift4", Field: "apiKey", Reason: "required field 'apiKey' cannot be empty"},
			status: http.StatusInternalServerError,
			want:   provider.ErrorPayload{Error: provider.MessageConfigFault},
		},
		{
			name:   "dispatch",
			err:    &provider.DispatchError{Provider: "shift4"},
			status: http.StatusBadRequest,
			want:   provider.ErrorPayload{Error: "Invalid payment provider: shift4"},
		},
		{
			name:   "rejected by provider",
			err:    &validate.Error{Reason: validate.ReasonInvalidCard},
			status: http.StatusBadRequest,
			want:   provider.ErrorPayload{Error: validate.ReasonInvalidCard},
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			want:   provider.ErrorPayload{Error: provider.MessageConfigFault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{
				processPaymentFunc: func(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResult, error) {
					return nil, tt.err
				},
			}

			w := postPayment(newTestHandler(svc), "shift4", validForm())

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var payload provider.ErrorPayload
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
			assert.Equal(t, tt.want, payload)
			assert.NotContains(t, w.Body.String(), "apiKey")
		})
	}
}

func TestPaymentHandler_ProcessPayment_MalformedJSON(t *testing.T) {
	svc := &mockPaymentService{}
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/shift4", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", "shift4")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	newTestHandler(svc).ProcessPayment(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request format", w.Body.String())
	assert.Zero(t, svc.calls)
}
