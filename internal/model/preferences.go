package model

import "time"

// LeadTime is one of the fixed "remind me before" options for timed routines.
type LeadTime string

const (
	Lead5Min   LeadTime = "5 min"
	Lead15Min  LeadTime = "15 min"
	Lead30Min  LeadTime = "30 min"
	Lead1Hour  LeadTime = "1 hour"
	Lead4Hours LeadTime = "4 hours"
)

const (
	DefaultLeadTime          = Lead15Min
	DefaultDailyReminderHour = 9
	DefaultDailyReminderMin  = 0
)

// LeadTimeOptions returns the selectable options in display order.
func LeadTimeOptions() []LeadTime {
	return []LeadTime{Lead5Min, Lead15Min, Lead30Min, Lead1Hour, Lead4Hours}
}

// Valid reports whether l is one of LeadTimeOptions.
func (l LeadTime) Valid() bool {
	for _, o := range LeadTimeOptions() {
		if o == l {
			return true
		}
	}
	return false
}

// Duration maps the option to an offset. Unknown values fall back to 15 minutes.
func (l LeadTime) Duration() time.Duration {
	switch l {
	case Lead5Min:
		return 5 * time.Minute
	case Lead15Min:
		return 15 * time.Minute
	case Lead30Min:
		return 30 * time.Minute
	case Lead1Hour:
		return time.Hour
	case Lead4Hours:
		return 4 * time.Hour
	default:
		return 15 * time.Minute
	}
}

// UserPreferences holds reminder settings.
type UserPreferences struct {
	RemindersEnabled          bool     `json:"reminders_enabled" yaml:"reminders_enabled"`
	SpecifiedTimeOption       LeadTime `json:"specified_time_option" yaml:"specified_time_option"`
	UnspecifiedReminderHour   int      `json:"unspecified_hour" yaml:"unspecified_hour"`
	UnspecifiedReminderMinute int      `json:"unspecified_minute" yaml:"unspecified_minute"`
}

// DefaultPreferences returns reminders off, 15 min lead and a 09:00 daily reminder.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		RemindersEnabled:          false,
		SpecifiedTimeOption:       DefaultLeadTime,
		UnspecifiedReminderHour:   DefaultDailyReminderHour,
		UnspecifiedReminderMinute: DefaultDailyReminderMin,
	}
}
