package validate

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/paybridge/infra/config"
)

// Reasons returned to callers when payment input is rejected
const (
	ReasonFieldsMissing   = "All fields (card number, expiration date, year, and CVV) must be provided."
	ReasonInvalidCard     = "Invalid card details."
	ReasonInvalidCurrency = "Invalid currency code or amount."
	ReasonInvalidProvider = "Invalid payment provider name."
)

// Error is a rejected validation with a human readable reason
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

type cardFields struct {
	Number   string `validate:"required,luhn"`
	ExpMonth string `validate:"required,numeric"`
	ExpYear  string `validate:"required,numeric"`
	CVV      string `validate:"required,cvv"`

	now time.Time
}

type chargeFields struct {
	Currency string `validate:"required,currency_code"`
	Amount   string `validate:"required,positive_amount"`
}

var registerOnce sync.Once

// register installs the payment tags on the shared validator
func register(v *validator.Validate) {
	registerOnce.Do(func() {
		_ = v.RegisterValidation("luhn", func(fl validator.FieldLevel) bool {
			return ValidateCardNumber(fl.Field().String())
		})
		_ = v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
			return ValidateCVV(fl.Field().String())
		})
		_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
			return ValidateCurrencyCode(fl.Field().String())
		})
		_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
			return ValidateAmount(fl.Field().String())
		})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			c := sl.Current().Interface().(cardFields)
			if !ValidateExpirationAt(c.ExpMonth, c.ExpYear, c.now) {
				sl.ReportError(c.ExpMonth, "ExpMonth", "ExpMonth", "expiry", "")
			}
		}, cardFields{})
	})
}

// PaymentValidator checks payment input before it is dispatched to a provider
type PaymentValidator struct {
	validate  *validator.Validate
	providers map[string]struct{}
	now       func() time.Time
}

// Option configures a PaymentValidator
type Option func(*PaymentValidator)

// WithClock replaces the wall clock used for expiry checks
func WithClock(now func() time.Time) Option {
	return func(v *PaymentValidator) {
		v.now = now
	}
}

// NewPaymentValidator creates a validator that accepts the given provider identifiers
func NewPaymentValidator(providers []string, opts ...Option) *PaymentValidator {
	v := config.App().Validator
	register(v)

	pv := &PaymentValidator{
		validate:  v,
		providers: make(map[string]struct{}, len(providers)),
		now:       time.Now,
	}
	for _, p := range providers {
		pv.providers[strings.ToLower(p)] = struct{}{}
	}
	for _, opt := range opts {
		opt(pv)
	}
	return pv
}

// ValidatePaymentFields returns nil when the payment input is acceptable or an
// *Error carrying the first failing reason: missing card fields, invalid card
// details, then invalid currency or amount.
func (v *PaymentValidator) ValidatePaymentFields(amount, currency, cardNumber, expYear, expMonth, cvv string) error {
	if !ValidateFieldsNotEmpty(cardNumber, expMonth, expYear, cvv) {
		return &Error{Reason: ReasonFieldsMissing}
	}

	card := cardFields{
		Number:   cardNumber,
		ExpMonth: strings.TrimSpace(expMonth),
		ExpYear:  strings.TrimSpace(expYear),
		CVV:      cvv,
		now:      v.now(),
	}
	if err := v.validate.Struct(card); err != nil {
		return &Error{Reason: ReasonInvalidCard}
	}

	charge := chargeFields{Currency: currency, Amount: amount}
	if err := v.validate.Struct(charge); err != nil {
		return &Error{Reason: ReasonInvalidCurrency}
	}
	return nil
}

// ValidatePaymentProvider accepts only known provider identifiers, ignoring case
func (v *PaymentValidator) ValidatePaymentProvider(name string) error {
	if name == "" {
		return &Error{Reason: ReasonInvalidProvider}
	}
	if _, ok := v.providers[strings.ToLower(name)]; !ok {
		return &Error{Reason: ReasonInvalidProvider}
	}
	return nil
}
