package preferences

import (
	"strconv"

	"routine-tracker/internal/model"
)

// Key names shared by the key-value backends.
const (
	keyRemindersEnabled  = "reminders_enabled"
	keySpecifiedOption   = "specified_time_option"
	keyUnspecifiedHour   = "unspecified_hour"
	keyUnspecifiedMinute = "unspecified_minute"
)

func encodeKV(p model.UserPreferences) map[string]string {
	return map[string]string{
		keyRemindersEnabled:  strconv.FormatBool(p.RemindersEnabled),
		keySpecifiedOption:   string(p.SpecifiedTimeOption),
		keyUnspecifiedHour:   strconv.Itoa(p.UnspecifiedReminderHour),
		keyUnspecifiedMinute: strconv.Itoa(p.UnspecifiedReminderMinute),
	}
}

// decodeKV builds preferences from a lookup. Missing or unparsable values keep their defaults.
func decodeKV(get func(key string) (string, bool, error)) (model.UserPreferences, error) {
	p := model.DefaultPreferences()

	if v, ok, err := get(keyRemindersEnabled); err != nil {
		return p, err
	} else if ok {
		if b, perr := strconv.ParseBool(v); perr == nil {
			p.RemindersEnabled = b
		}
	}
	if v, ok, err := get(keySpecifiedOption); err != nil {
		return p, err
	} else if ok && v != "" {
		p.SpecifiedTimeOption = model.LeadTime(v)
	}
	if v, ok, err := get(keyUnspecifiedHour); err != nil {
		return p, err
	} else if ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			p.UnspecifiedReminderHour = n
		}
	}
	if v, ok, err := get(keyUnspecifiedMinute); err != nil {
		return p, err
	} else if ok {
		if n, perr := strconv.Atoi(v); perr == nil {
			p.UnspecifiedReminderMinute = n
		}
	}
	return normalize(p), nil
}
