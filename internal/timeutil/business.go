package timeutil

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 15:04"
)

var location atomic.Pointer[time.Location]

func init() {
	location.Store(time.UTC)
}

// SetLocation switches the business timezone (IANA name, e.g. "Europe/Riga")
func SetLocation(name string) error {
	if name == "" {
		location.Store(time.UTC)
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", name, err)
	}
	location.Store(loc)
	return nil
}

// Location returns the business timezone
func Location() *time.Location {
	return location.Load()
}

// Now returns the current time in the business timezone
func Now() time.Time {
	return time.Now().In(Location())
}

// Today returns midnight of the current business day
func Today() time.Time {
	return StartOfDay(time.Now())
}

// ParseDate parses a YYYY-MM-DD date as midnight in the business timezone
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location())
}

// Format formats t in the business timezone
func Format(t time.Time, layout string) string {
	return t.In(Location()).Format(layout)
}

// StartOfDay returns 00:00:00 of t's day in the business timezone
func StartOfDay(t time.Time) time.Time {
	loc := Location()
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
