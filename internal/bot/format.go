package bot

import (
	"fmt"
	"html"
	"strings"

	"routine-tracker/internal/model"
	"routine-tracker/internal/service"
)

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func formatSchedule(routine model.Routine, recs []model.RoutineRecurrence) string {
	at := "any time"
	if routine.HasTime() {
		at = routine.TimeString()
	}
	if len(recs) == 0 {
		return at
	}
	days := make([]string, 0, len(recs))
	interval := 1
	for _, r := range recs {
		days = append(days, model.DayOfWeek(r.DayOfWeek).String())
		if r.Interval() > interval {
			interval = r.Interval()
		}
	}
	every := ""
	if interval > 1 {
		every = fmt.Sprintf(", every %d weeks", interval)
	}
	return fmt.Sprintf("%s · %s%s", at, strings.Join(days, " "), every)
}

func formatRoutineLine(r model.RoutineWithTasks, recs []model.RoutineRecurrence) string {
	return fmt.Sprintf("• <b>#%d</b> %s <i>(%s)</i> · %d tasks\n",
		r.Routine.ID, escape(r.Routine.Name), escape(formatSchedule(r.Routine, recs)), len(r.Tasks))
}

func formatRoutineDetails(r model.RoutineWithTasks, recs []model.RoutineRecurrence) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 <b>%s</b> (#%d)\n", escape(r.Routine.Name), r.Routine.ID))
	sb.WriteString(fmt.Sprintf("🕒 %s\n", escape(formatSchedule(r.Routine, recs))))
	if len(r.Tasks) == 0 {
		sb.WriteString("\n— no tasks\n")
		return strings.TrimSpace(sb.String())
	}
	sb.WriteString("\n")
	total := 0
	for i, t := range r.Tasks {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, escape(t.Name)))
		if t.Duration != nil {
			total += *t.Duration
			sb.WriteString(fmt.Sprintf(" · %s", service.FormatDuration(*t.Duration)))
		}
		sb.WriteByte('\n')
	}
	if total > 0 {
		sb.WriteString(fmt.Sprintf("\n⏳ Total: %s", service.FormatDuration(total)))
	}
	return strings.TrimSpace(sb.String())
}

func formatSettings(state service.SettingsState) string {
	status := "🔕 off"
	if state.RemindersEnabled {
		status = "🔔 on"
	}
	return fmt.Sprintf("⚙️ <b>Reminders</b>: %s\n⏱ Lead time: %s\n📅 Daily reminder: %s",
		status, escape(string(state.SelectedLead)), service.FormatTime(state.DailyHour, state.DailyMinute))
}

func leadOptionList() string {
	opts := model.LeadTimeOptions()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}
