package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"routine-tracker/internal/model"
	"routine-tracker/internal/notify"
)

const (
	DailyReminderID = "daily-unspecified-reminder"
	ReminderTitle   = "Routine Reminder"

	specifiedReminderPrefix = "specified-reminder-"
)

// SpecifiedReminderID is the notification id for one recurrence of a timed routine.
func SpecifiedReminderID(routineID uint, dayOfWeek int) string {
	return fmt.Sprintf("%s%d-%d", specifiedReminderPrefix, routineID, dayOfWeek)
}

func specifiedNotification(r model.Routine, rec model.RoutineRecurrence, fireAt time.Time) notify.Notification {
	return notify.Notification{
		ID:     SpecifiedReminderID(r.ID, rec.DayOfWeek),
		Title:  ReminderTitle,
		Body:   "Soon: " + r.Name,
		FireAt: fireAt,
		Repeat: notify.Every(time.Duration(rec.Interval()) * week),
	}
}

func dailyNotification(missing int64, fireAt time.Time) notify.Notification {
	return notify.Notification{
		ID:     DailyReminderID,
		Title:  ReminderTitle,
		Body:   fmt.Sprintf("You have %d routines to start", missing),
		FireAt: fireAt,
		Repeat: notify.Daily(),
	}
}

// FormatUpcomingHTML renders upcoming reminders for chat surfaces.
func FormatUpcomingHTML(items []Upcoming, now time.Time) string {
	var b strings.Builder
	b.WriteString("⏰ <b>Upcoming reminders</b>\n")
	if len(items) == 0 {
		b.WriteString("— nothing scheduled\n")
		return strings.TrimSpace(b.String())
	}
	for _, it := range items {
		at := it.At.In(now.Location())
		b.WriteString(fmt.Sprintf("• %s <i>%s</i>", at.Format("Mon 02 Jan 15:04"), html.EscapeString(it.Body)))
		if d := at.Sub(now); d > 0 {
			b.WriteString(fmt.Sprintf(" · in %s", humanizeUntil(d)))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func humanizeUntil(d time.Duration) string {
	days := int(d.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, FormatDuration(int(d.Seconds())%86400))
	}
	return FormatDuration(int(d.Seconds()))
}
