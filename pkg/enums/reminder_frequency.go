package enums

import "fmt"

// ReminderFrequency controls how many daily reminders are scheduled.
type ReminderFrequency string

const (
	ReminderFrequencyOnce   ReminderFrequency = "once"
	ReminderFrequencyTwice  ReminderFrequency = "twice"
	ReminderFrequencyCustom ReminderFrequency = "custom"
)

var validReminderFrequencies = []ReminderFrequency{
	ReminderFrequencyOnce,
	ReminderFrequencyTwice,
	ReminderFrequencyCustom,
}

// IsValid checks whether the given frequency matches the canonical enum.
func (f ReminderFrequency) IsValid() bool {
	for _, candidate := range validReminderFrequencies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseReminderFrequency converts raw strings into ReminderFrequency.
func ParseReminderFrequency(value string) (ReminderFrequency, error) {
	for _, candidate := range validReminderFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder frequency %q", value)
}
