package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only calendar-date format accepted by imports.
const DateLayout = "2006-01-02"

// MidnightUTC drops the clock part of value and pins it to UTC.
func MidnightUTC(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date to midnight UTC. Out-of-range
// components such as month 13 are rejected rather than normalized.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported date format: %q", value)
	}
	return MidnightUTC(parsed), nil
}
