package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mstgnz/paybridge/infra/logger"
	"github.com/mstgnz/paybridge/infra/response"
	"github.com/mstgnz/paybridge/infra/validate"
	"github.com/mstgnz/paybridge/provider"
)

// PaymentTimeout bounds a payment including every upstream call
const PaymentTimeout = 30 * time.Second

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	ProcessPayment(ctx context.Context, providerName string, request provider.PaymentRequest) (*provider.PaymentResult, error)
}

// PaymentValidator validates the provider name and the payment fields of a request
type PaymentValidator interface {
	ValidatePaymentProvider(name string) error
	ValidatePaymentFields(amount, currency, cardNumber, expYear, expMonth, cvv string) error
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validator      PaymentValidator
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validator PaymentValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
	}
}

// paymentForm is the JSON shape of a payment request. Form posts use the same field names.
type paymentForm struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	CardNumber   string `json:"card_number"`
	CardExpYear  string `json:"card_exp_year"`
	CardExpMonth string `json:"card_exp_month"`
	CardCVV      string `json:"card_cvv"`
	CardHolder   string `json:"card_holder"`
}

// ProcessPayment handles POST /v1/payments/{provider}.
//
// Rejected input is answered with 400 and the reason as plain text. Payment
// faults are answered with a JSON {error, details} body: 400 for an unknown
// provider or rejected card data, 502 when the upstream failed and 500 for
// configuration faults.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), PaymentTimeout)
	defer cancel()

	if id := middleware.GetReqID(ctx); id != "" {
		ctx = provider.WithRequestID(ctx, id)
	}

	providerName := chi.URLParam(r, "provider")
	if err := h.validator.ValidatePaymentProvider(providerName); err != nil {
		response.Text(w, http.StatusBadRequest, err.Error())
		return
	}

	form, err := parsePaymentForm(r)
	if err != nil {
		response.Text(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.ValidatePaymentFields(form.Amount, form.Currency, form.CardNumber, form.CardExpYear, form.CardExpMonth, form.CardCVV); err != nil {
		response.Text(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.paymentService.ProcessPayment(ctx, providerName, provider.PaymentRequest{
		Amount:       form.Amount,
		Currency:     form.Currency,
		CardNumber:   form.CardNumber,
		CardExpMonth: form.CardExpMonth,
		CardExpYear:  form.CardExpYear,
		CardCVV:      form.CardCVV,
		CardHolder:   form.CardHolder,
	})
	if err != nil {
		response.WriteJSON(w, StatusForError(err), provider.ErrorPayloadFor(err))
		return
	}

	response.WriteJSON(w, http.StatusOK, result)
}

func parsePaymentForm(r *http.Request) (paymentForm, error) {
	var form paymentForm

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&form)
		return form, err
	}

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 10); err != nil {
			return form, err
		}
	} else if err := r.ParseForm(); err != nil {
		return form, err
	}

	form.Amount = r.PostFormValue("amount")
	form.Currency = r.PostFormValue("currency")
	form.CardNumber = r.PostFormValue("card_number")
	form.CardExpYear = r.PostFormValue("card_exp_year")
	form.CardExpMonth = r.PostFormValue("card_exp_month")
	form.CardCVV = r.PostFormValue("card_cvv")
	form.CardHolder = r.PostFormValue("card_holder")
	return form, nil
}

// StatusForError maps a payment error to the HTTP status returned to callers
func StatusForError(err error) int {
	switch {
	case errors.As(err, new(*provider.DispatchError)), errors.As(err, new(*validate.Error)):
		return http.StatusBadRequest
	case errors.As(err, new(*provider.UpstreamError)), errors.As(err, new(*provider.TransportError)):
		return http.StatusBadGateway
	case errors.As(err, new(*provider.ConfigError)):
		return http.StatusInternalServerError
	}

	logger.Warn("Unclassified payment error", logger.LogContext{
		Fields: map[string]any{"error": err.Error()},
	})
	return http.StatusInternalServerError
}
