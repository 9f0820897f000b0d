package enums

import "fmt"

// NotificationKind maps to the notification_kind enum in Postgres.
type NotificationKind string

const (
	NotificationKindDailyReminder  NotificationKind = "daily_reminder"
	NotificationKindWeeklyReport   NotificationKind = "weekly_report"
	NotificationKindDailyChallenge NotificationKind = "daily_challenge"
	NotificationKindAchievement    NotificationKind = "achievement"
	NotificationKindMilestone      NotificationKind = "milestone"
	NotificationKindStreak         NotificationKind = "streak"
	NotificationKindLevelUp        NotificationKind = "level_up"
	NotificationKindTest           NotificationKind = "test"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindDailyReminder,
	NotificationKindWeeklyReport,
	NotificationKindDailyChallenge,
	NotificationKindAchievement,
	NotificationKindMilestone,
	NotificationKindStreak,
	NotificationKindLevelUp,
	NotificationKindTest,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// Recurrence maps to the recurrence enum in Postgres.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// IsValid checks whether the given recurrence matches the canonical enum.
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly:
		return true
	}
	return false
}
