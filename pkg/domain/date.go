package domain

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar days.
const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
//
// Returns ErrInvalidDate for anything that is not a valid calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders a time as a YYYY-MM-DD string in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// IsValidDate reports whether s is a valid YYYY-MM-DD calendar day.
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// MonthKey returns the YYYY-MM prefix of a date string, or "" when the
// date does not parse.
func MonthKey(date string) string {
	if !IsValidDate(date) {
		return ""
	}
	return date[:7]
}

// DaysInMonthKey returns the number of calendar days in a YYYY-MM month
// key. Unparseable keys fall back to 30.
func DaysInMonthKey(key string) int {
	t, err := time.ParseInLocation("2006-01", key, time.UTC)
	if err != nil {
		return 30
	}
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
