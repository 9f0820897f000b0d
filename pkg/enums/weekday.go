package enums

import (
	"fmt"
	"strings"
	"time"
)

// weekday name → time.Weekday, Sunday = 0.
var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday converts a weekday name into time.Weekday.
func ParseWeekday(value string) (time.Weekday, error) {
	day, ok := weekdaysByName[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", value)
	}
	return day, nil
}

// IsValidWeekday reports whether value names a weekday.
func IsValidWeekday(value string) bool {
	_, err := ParseWeekday(value)
	return err == nil
}
