package schedule

import (
	"fmt"
	"time"
)

const (
	// KeyLayout is the time layout of a schedule key.
	KeyLayout = "200601021504"
	// DateLayout is the time layout of the date part of a key.
	DateLayout = "20060102"
	// DayStart is the time-of-day label of midnight.
	DayStart = "0000"
)

// Key indexes the schedule timeline as YYYYMMDDHHmm.
type Key string

// ParseKey validates s as a schedule key.
func ParseKey(s string) (Key, error) {
	if len(s) != len(KeyLayout) {
		return "", fmt.Errorf("%w: key %q must be exactly %d characters", ErrValidation, s, len(KeyLayout))
	}
	if !allDigits(s) {
		return "", fmt.Errorf("%w: key %q must contain only digits", ErrValidation, s)
	}
	if _, err := time.Parse(KeyLayout, s); err != nil {
		return "", fmt.Errorf("%w: key %q is not a valid date and time", ErrValidation, s)
	}
	return Key(s), nil
}

// KeyAt returns the key of the minute containing t, in t's location.
func KeyAt(t time.Time) Key { return Key(t.Format(KeyLayout)) }

// NewKey joins an 8-digit date and a 4-digit time of day.
func NewKey(date, timeOfDay string) (Key, error) { return ParseKey(date + timeOfDay) }

// Date returns the YYYYMMDD part of the key.
func (k Key) Date() string { return string(k[:8]) }

// TimeOfDay returns the HHmm part of the key.
func (k Key) TimeOfDay() string { return string(k[8:]) }

// Time returns the instant of the key in loc.
func (k Key) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(KeyLayout, string(k), loc)
}

// ValidDate reports whether s is an 8-digit calendar date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) || !allDigits(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTimeOfDay reports whether s is a 4-digit HHmm time between 0000 and 2359.
func ValidTimeOfDay(s string) bool {
	if len(s) != 4 || !allDigits(s) {
		return false
	}
	_, err := time.Parse("1504", s)
	return err == nil
}

// DateOf formats t as YYYYMMDD.
func DateOf(t time.Time) string { return t.Format(DateLayout) }

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
