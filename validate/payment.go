package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	cardExpiryRe = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
)

// CardNumber accepts 13 to 19 digits (spaces ignored) passing the Luhn check.
func CardNumber(value string) error {
	digits := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if digits == "" {
		return errors.New("card number is required")
	}
	if len(digits) < 13 || len(digits) > 19 {
		return errors.New("please enter a valid card number")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return errors.New("please enter a valid card number")
		}
	}
	if !luhn(digits) {
		return errors.New("please enter a valid card number")
	}
	return nil
}

func luhn(digits string) bool {
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

// CardExpiry expects MM/YY. A card stays valid through the last day of its
// expiry month.
func CardExpiry(value string, now time.Time) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("expiry date is required")
	}
	m := cardExpiryRe.FindStringSubmatch(value)
	if m == nil {
		return errors.New("expiry date must be MM/YY")
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return errors.New("expiry date must be MM/YY")
	}

	firstOfNextMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(firstOfNextMonth) {
		return errors.New("card has expired")
	}
	return nil
}

func CVV(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("CVV is required")
	}
	if !cvvRe.MatchString(value) {
		return errors.New("CVV must be 3 or 4 digits")
	}
	return nil
}
