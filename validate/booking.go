package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinGuests = 1
	MaxGuests = 8
)

// StartDate requires a date no earlier than today.
func StartDate(value string, now time.Time) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("check-in date is required")
	}
	start, err := ParseDate(value)
	if err != nil {
		return errors.New("check-in date must be a valid date (YYYY-MM-DD)")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return errors.New("check-in date cannot be in the past")
	}
	return nil
}

// EndDate requires a date after start. An unparsable start is reported by
// StartDate, not here.
func EndDate(start, end string) error {
	if strings.TrimSpace(end) == "" {
		return errors.New("check-out date is required")
	}
	e, err := ParseDate(end)
	if err != nil {
		return errors.New("check-out date must be a valid date (YYYY-MM-DD)")
	}
	s, err := ParseDate(start)
	if err != nil {
		return nil
	}
	if !e.After(s) {
		return errors.New("check-out date must be after check-in date")
	}
	return nil
}

func Guests(n int) error {
	if n < MinGuests || n > MaxGuests {
		return fmt.Errorf("guests must be between %d and %d", MinGuests, MaxGuests)
	}
	return nil
}
