package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

// supportedCurrencies is the fixed set of ISO 4217 codes accepted for payments
var supportedCurrencies = map[string]struct{}{
	"USD": {}, "CAD": {}, "EUR": {}, "GBP": {}, "AUD": {}, "JPY": {}, "MXN": {},
	"CHF": {}, "CNY": {}, "INR": {}, "BRL": {}, "SEK": {}, "NOK": {}, "DKK": {},
	"HKD": {}, "SGD": {}, "NZD": {}, "ZAR": {}, "KRW": {}, "RUB": {}, "TRY": {},
	"PLN": {}, "ILS": {}, "MYR": {}, "THB": {}, "PHP": {},
}

// ValidateCurrencyCode checks the code, case-insensitively, against the supported list
func ValidateCurrencyCode(code string) bool {
	_, ok := supportedCurrencies[strings.ToUpper(code)]
	return ok
}

// ValidateAmount reports whether amount is a decimal number greater than zero
func ValidateAmount(amount string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// ValidateCurrencyAndAmount combines the currency and amount checks
func ValidateCurrencyAndAmount(currency, amount string) bool {
	if currency == "" || !ValidateCurrencyCode(currency) {
		return false
	}
	return ValidateAmount(amount)
}
