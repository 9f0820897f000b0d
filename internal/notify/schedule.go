package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

// reminderMessages feeds daily reminders by slot index. A device configured
// with more custom times than messages reuses the last entry.
var reminderMessages = []struct {
	Title string
	Body  string
}{
	{"Good morning! 🌱", "Start your day green — log your first waste entry."},
	{"Evening check-in ♻️", "Logged your waste today? A minute now keeps your streak alive."},
	{"Quick eco reminder", "Your bin is talking. Track what went in and earn carbon credits."},
}

// dailyChallenges are fixed announcements at fixed local hours.
var dailyChallenges = []struct {
	Hour     int
	Title    string
	Body     string
	Reminder bool
}{
	{10, "Today's challenge 🏆", "Recycle three items before midnight to earn bonus credits.", false},
	{14, "Challenge check-in", "Halfway through the day — how is today's recycling challenge going?", true},
	{16, "Last call for today's challenge", "A few hours left to finish today's challenge and claim the bonus.", true},
}

// BuildSchedule computes the complete future-fire set for a device from its
// preferences. The result replaces any previously stored set; there is no
// incremental diffing. Every ScheduledFor is strictly after now: a time that
// already passed today rolls to tomorrow, a weekly slot that passed today
// rolls a full week.
func BuildSchedule(now time.Time, prefs models.NotificationPreference) []models.ScheduledNotification {
	var out []models.ScheduledNotification

	if prefs.DailyReminders {
		for i, clock := range reminderTimes(prefs) {
			fire, ok := nextDaily(now, clock)
			if !ok {
				continue
			}
			msg := reminderMessages[min(i, len(reminderMessages)-1)]
			out = append(out, models.ScheduledNotification{
				ID:                   uuid.New(),
				DeviceID:             prefs.DeviceID,
				Kind:                 enums.NotificationKindDailyReminder,
				Title:                msg.Title,
				Body:                 msg.Body,
				ScheduledFor:         fire,
				Recurring:            enums.RecurrenceDaily,
				RequiresPermission:   true,
				Tag:                  fmt.Sprintf("daily-reminder-%s", clock),
				RequiresNoEntryToday: true,
				SoundEffect:          reminderSound(prefs),
				CreatedAt:            now,
			})
		}
	}

	if prefs.WeeklyReports {
		if fire, ok := nextWeekly(now, prefs.WeeklyReportDay, prefs.WeeklyReportTime); ok {
			out = append(out, models.ScheduledNotification{
				ID:                 uuid.New(),
				DeviceID:           prefs.DeviceID,
				Kind:               enums.NotificationKindWeeklyReport,
				Title:              "Your weekly impact report 📊",
				Body:               "See how much carbon you saved this week and where you rank.",
				ScheduledFor:       fire,
				Recurring:          enums.RecurrenceWeekly,
				RequiresPermission: true,
				Tag:                "weekly-report",
				SoundEffect:        reminderSound(prefs),
				CreatedAt:          now,
			})
		}
	}

	if prefs.ChallengeNotifications {
		for _, ch := range dailyChallenges {
			if ch.Reminder && !prefs.ChallengeReminders {
				continue
			}
			fire, _ := nextDaily(now, fmt.Sprintf("%02d:00", ch.Hour))
			out = append(out, models.ScheduledNotification{
				ID:                 uuid.New(),
				DeviceID:           prefs.DeviceID,
				Kind:               enums.NotificationKindDailyChallenge,
				Title:              ch.Title,
				Body:               ch.Body,
				ScheduledFor:       fire,
				Recurring:          enums.RecurrenceDaily,
				RequiresPermission: true,
				Tag:                fmt.Sprintf("daily-challenge-%02d", ch.Hour),
				SoundEffect:        reminderSound(prefs),
				CreatedAt:          now,
			})
		}
	}

	return out
}

// reminderTimes resolves the configured frequency into concrete HH:MM slots.
func reminderTimes(prefs models.NotificationPreference) []string {
	switch prefs.ReminderFrequency {
	case enums.ReminderFrequencyOnce:
		return []string{prefs.MorningTime}
	case enums.ReminderFrequencyCustom:
		return prefs.CustomTimes
	default:
		return []string{prefs.MorningTime, prefs.EveningTime}
	}
}

// nextDaily returns today at the given HH:MM, rolled one calendar day forward
// when that instant is not strictly in the future.
func nextDaily(now time.Time, clock string) (time.Time, bool) {
	minutes, ok := clockMinutes(clock)
	if !ok {
		return time.Time{}, false
	}
	fire := time.Date(now.Year(), now.Month(), now.Day(), minutes/60, minutes%60, 0, 0, now.Location())
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire, true
}

// nextWeekly returns the next occurrence of the named weekday at HH:MM.
// When today is the target day and the time already passed, the slot moves a
// full week, never zero days.
func nextWeekly(now time.Time, dayName, clock string) (time.Time, bool) {
	target, err := enums.ParseWeekday(dayName)
	if err != nil {
		return time.Time{}, false
	}
	minutes, ok := clockMinutes(clock)
	if !ok {
		return time.Time{}, false
	}

	days := (int(target) - int(now.Weekday()) + 7) % 7
	fire := time.Date(now.Year(), now.Month(), now.Day(), minutes/60, minutes%60, 0, 0, now.Location()).
		AddDate(0, 0, days)
	if days == 0 && !fire.After(now) {
		fire = fire.AddDate(0, 0, 7)
	}
	return fire, true
}

func reminderSound(prefs models.NotificationPreference) *string {
	if !prefs.SoundEnabled || !prefs.ReminderSounds {
		return nil
	}
	name := SoundReminder
	return &name
}
