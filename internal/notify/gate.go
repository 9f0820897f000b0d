package notify

import (
	"strconv"
	"strings"
	"time"

	"github.com/ecotrackth/ecotrack-backend/pkg/db/models"
)

// Suppression reasons recorded on delivery logs. Empty string means delivered.
const (
	ReasonQuietHours  = "quiet_hours"
	ReasonDailyCap    = "daily_cap"
	ReasonEntryExists = "entry_exists"
	ReasonSendFailed  = "send_failed"
)

// CanSend decides whether a notification may fire at the given instant. The
// daily cap is checked before quiet hours so the recorded reason is stable
// when both apply. Pure predicate; the caller supplies the delivered count
// for the device's current local calendar day.
func CanSend(now time.Time, prefs models.NotificationPreference, sentToday int) (bool, string) {
	if sentToday >= prefs.MaxNotificationsPerDay {
		return false, ReasonDailyCap
	}
	if prefs.QuietHoursEnabled && inQuietHours(now, prefs.QuietHoursStart, prefs.QuietHoursEnd) {
		return false, ReasonQuietHours
	}
	return true, ""
}

// inQuietHours treats both boundaries as inclusive. A start later than the
// end is an overnight window that wraps midnight, e.g. 22:00-08:00.
func inQuietHours(now time.Time, start, end string) bool {
	startMin, okStart := clockMinutes(start)
	endMin, okEnd := clockMinutes(end)
	if !okStart || !okEnd {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	if startMin > endMin {
		return current >= startMin || current <= endMin
	}
	return current >= startMin && current <= endMin
}

// clockMinutes converts an HH:MM string into minutes since midnight.
func clockMinutes(value string) (int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
