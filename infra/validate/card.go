package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	nonDigit   = regexp.MustCompile(`\D`)
	cvvPattern = regexp.MustCompile(`^\d{3,4}$`)
)

// NormalizeCardNumber removes spaces, dashes and any other non-digit characters
func NormalizeCardNumber(number string) string {
	return nonDigit.ReplaceAllString(number, "")
}

// ValidateCardNumber strips every non-digit character and checks the
// remaining number for a length of 13 to 19 digits and a valid Luhn checksum.
func ValidateCardNumber(number string) bool {
	digits := NormalizeCardNumber(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateExpiration reports whether month/year is a valid, not yet passed expiry
func ValidateExpiration(month, year string) bool {
	return ValidateExpirationAt(month, year, time.Now())
}

// ValidateExpirationAt is ValidateExpiration against the given clock reading.
// A card expiring in the current month is still valid.
func ValidateExpirationAt(month, year string, now time.Time) bool {
	month = strings.TrimSpace(month)
	year = strings.TrimSpace(year)
	if month == "" || year == "" {
		return false
	}

	m, err := strconv.Atoi(month)
	if err != nil {
		return false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return false
	}

	currentYear, currentMonth := now.Year(), int(now.Month())
	if y < currentYear || (y == currentYear && m < currentMonth) {
		return false
	}
	return m >= 1 && m <= 12
}

// ValidateCVV accepts exactly three or four digits
func ValidateCVV(cvv string) bool {
	return cvv != "" && cvvPattern.MatchString(cvv)
}

// ValidateFieldsNotEmpty reports whether all card fields were supplied
func ValidateFieldsNotEmpty(cardNumber, expMonth, expYear, cvv string) bool {
	for _, v := range []string{cardNumber, expMonth, expYear, cvv} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Card scheme identifiers as understood by the upstream processors
const (
	BrandVisa       = "VISA"
	BrandMaster     = "MASTER"
	BrandAmex       = "AMEX"
	BrandDiscover   = "DISCOVER"
	BrandJCB        = "JCB"
	BrandDinersClub = "DINERS"
	BrandUnionPay   = "CHINAUNIONPAY"
	BrandMaestro    = "MAESTRO"
)

// CardBrand derives the card scheme from the issuer prefix of the number.
// It returns an empty string when the prefix is not recognised.
func CardBrand(number string) string {
	digits := NormalizeCardNumber(number)
	if len(digits) < 4 {
		return ""
	}

	p1 := int(digits[0] - '0')
	p2, _ := strconv.Atoi(digits[:2])
	p3, _ := strconv.Atoi(digits[:3])
	p4, _ := strconv.Atoi(digits[:4])

	switch {
	case p2 == 34 || p2 == 37:
		return BrandAmex
	case p1 == 4:
		return BrandVisa
	case (p2 >= 51 && p2 <= 55) || (p4 >= 2221 && p4 <= 2720):
		return BrandMaster
	case p4 == 6011 || p2 == 65 || (p3 >= 644 && p3 <= 649):
		return BrandDiscover
	case p4 >= 3528 && p4 <= 3589:
		return BrandJCB
	case p2 == 36 || p2 == 38 || p2 == 39 || (p3 >= 300 && p3 <= 305):
		return BrandDinersClub
	case p2 == 62 || p2 == 81:
		return BrandUnionPay
	case p2 == 50 || (p2 >= 56 && p2 <= 58) || p2 == 67 || p4 == 6304:
		return BrandMaestro
	}
	return ""
}
