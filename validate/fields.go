package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the wire format of every date field.
const DateLayout = time.DateOnly

const (
	MinAge            = 18
	MaxAge            = 120
	MaxExpiryYears    = 20
	minNameLength     = 2
	minDocumentLength = 5
	maxDocumentLength = 20
)

var (
	nameRe     = regexp.MustCompile(`^[\p{L} '\-]+$`)
	phoneRe    = regexp.MustCompile(`^[0-9+()\-.]{10,15}$`)
	postalRe   = regexp.MustCompile(`^[A-Za-z0-9 \-]{3,10}$`)
	documentRe = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
)

// Required fails when value is blank.
func Required(label, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", label)
	}
	return nil
}

// Name accepts letters, spaces, hyphens and apostrophes, at least two
// characters long.
func Name(label, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s is required", label)
	}
	if utf8.RuneCountInString(value) < minNameLength {
		return fmt.Errorf("%s must be at least %d characters", label, minNameLength)
	}
	if !nameRe.MatchString(value) {
		return fmt.Errorf("%s can only contain letters, spaces, hyphens and apostrophes", label)
	}
	return nil
}

// ParseDate reads a YYYY-MM-DD value as a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// Age returns the number of full years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func DateOfBirth(value string, now time.Time) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("date of birth is required")
	}
	dob, err := ParseDate(value)
	if err != nil {
		return errors.New("date of birth must be a valid date (YYYY-MM-DD)")
	}
	age := Age(dob, now)
	if age < MinAge {
		return fmt.Errorf("you must be at least %d years old", MinAge)
	}
	if age > MaxAge {
		return errors.New("please enter a valid date of birth")
	}
	return nil
}

// Phone strips whitespace, then expects 10 to 15 digits or +()-. characters.
func Phone(value string) error {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if compact == "" {
		return errors.New("phone number is required")
	}
	if !phoneRe.MatchString(compact) {
		return errors.New("please enter a valid phone number")
	}
	return nil
}

func PostalCode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("postal code is required")
	}
	if !postalRe.MatchString(value) {
		return errors.New("please enter a valid postal code")
	}
	return nil
}

func DocumentNumber(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("document number is required")
	}
	if len(value) < minDocumentLength || len(value) > maxDocumentLength || !documentRe.MatchString(value) {
		return fmt.Errorf("document number must be %d-%d letters, digits or hyphens", minDocumentLength, maxDocumentLength)
	}
	return nil
}

// DocumentExpiry requires a date strictly after now and no later than
// MaxExpiryYears from now.
func DocumentExpiry(value string, now time.Time) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("expiry date is required")
	}
	expiry, err := ParseDate(value)
	if err != nil {
		return errors.New("expiry date must be a valid date (YYYY-MM-DD)")
	}
	if !expiry.After(now) {
		return errors.New("document has expired")
	}
	if expiry.After(now.AddDate(MaxExpiryYears, 0, 0)) {
		return errors.New("please enter a valid expiry date")
	}
	return nil
}
