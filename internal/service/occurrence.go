package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"routine-tracker/internal/model"
)

var (
	ErrNameRequired        = errors.New("routine name is required")
	ErrInvalidTime         = errors.New("time must be HH:MM (24-hour)")
	ErrInvalidWeekday      = errors.New("weekday must be between 1 (Mon) and 7 (Sun)")
	ErrUnknownLeadTime     = errors.New("unknown lead time option")
	ErrInvalidReminderTime = errors.New("daily reminder time out of range")
)

const week = 7 * 24 * time.Hour

// NextSpecifiedOccurrence returns the next instant, strictly after now, at
// which a reminder for a routine starting at hour:minute on the given ISO
// weekday should fire, lead before the start. Occurrences repeat every
// intervalWeeks weeks counted from the nearest matching date.
func NextSpecifiedOccurrence(dayOfWeek, intervalWeeks, hour, minute int, lead time.Duration, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if intervalWeeks < 1 {
		intervalWeeks = 1
	}
	if lead < 0 {
		lead = 0
	}
	dayOfWeek = ((dayOfWeek-1)%7+7)%7 + 1

	local := now.In(loc)
	delta := (dayOfWeek - ISOWeekday(local) + 7) % 7
	y, m, d := local.Date()
	candidate := time.Date(y, m, d+delta, hour, minute, 0, 0, loc).Add(-lead)
	if candidate.After(now) {
		return candidate
	}

	period := time.Duration(intervalWeeks) * week
	steps := now.Sub(candidate)/period + 1
	return candidate.Add(steps * period)
}

// NextDailyOccurrence returns today at hour:minute if that is still ahead of
// now, otherwise the same wall time tomorrow.
func NextDailyOccurrence(hour, minute int, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	y, m, d := local.Date()
	today := time.Date(y, m, d, hour, minute, 0, 0, loc)
	if today.After(now) {
		return today
	}
	return time.Date(y, m, d+1, hour, minute, 0, 0, loc)
}

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func ISOWeekday(t time.Time) int {
	return int(model.ISODayOfWeek(t.Weekday()))
}

// ParseHourMinute splits "HH:MM". Components that fail to parse become 0;
// use ValidateTimeOfDay for user input.
func ParseHourMinute(s string) (int, int) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		hour = 0
	}
	minute := 0
	if len(parts) >= 2 {
		if v, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			minute = v
		}
	}
	return hour, minute
}

// ValidateTimeOfDay checks a user-supplied "H:MM"/"HH:MM" and returns it zero-padded.
func ValidateTimeOfDay(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return FormatTime(hour, minute), nil
}

func FormatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// FormatDuration renders seconds as "1h 5m", "1h", "5m" or "0m".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
