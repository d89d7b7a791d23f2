package safety

import "regexp"

var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// IsValidTimeFormat reports whether s is a valid "HH:mm" 24-hour
// time-of-day string. A single-digit hour is accepted ("9:00").
func IsValidTimeFormat(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// IsValidGracePeriod reports whether n is a usable grace period:
// positive and at most 24 hours.
func IsValidGracePeriod(n int) bool {
	return n > 0 && n <= 1440
}
