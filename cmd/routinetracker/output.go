package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"routine-tracker/internal/model"
	"routine-tracker/internal/service"
)

var (
	faint = color.New(color.Faint)
	green = color.New(color.FgGreen)
	bold  = color.New(color.Bold)
)

func success(w io.Writer, format string, args ...interface{}) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return uint(n), nil
}

// parseTaskSpec reads "Name" or "Name:10m".
func parseTaskSpec(raw string) (service.TaskInput, error) {
	name, dur, found := strings.Cut(raw, ":")
	in := service.TaskInput{Name: strings.TrimSpace(name)}
	if !found || strings.TrimSpace(dur) == "" {
		return in, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(dur))
	if err != nil || d < 0 {
		return in, fmt.Errorf("invalid task duration %q", dur)
	}
	secs := int(d / time.Second)
	in.DurationSeconds = &secs
	return in, nil
}

// parseDaysFlag accepts "daily", "weekdays", "weekends" or a list like "mon,wed,5".
func parseDaysFlag(raw string) ([]model.DayOfWeek, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily", "every day":
		return model.AllDays(), nil
	case "weekdays":
		return []model.DayOfWeek{model.Monday, model.Tuesday, model.Wednesday, model.Thursday, model.Friday}, nil
	case "weekends":
		return []model.DayOfWeek{model.Saturday, model.Sunday}, nil
	case "none":
		return []model.DayOfWeek{}, nil
	}
	days, err := model.ParseDays(raw)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []model.DayOfWeek{}
	}
	return days, nil
}

func describeSchedule(r model.Routine, recs []model.RoutineRecurrence) string {
	at := "any time"
	if r.HasTime() {
		at = r.TimeString()
	}
	if len(recs) == 0 {
		return at + ", no days"
	}
	days := make([]string, 0, len(recs))
	interval := 1
	for _, rec := range recs {
		days = append(days, model.DayOfWeek(rec.DayOfWeek).String())
		if rec.Interval() > interval {
			interval = rec.Interval()
		}
	}
	out := at + " on " + strings.Join(days, ", ")
	if interval > 1 {
		out += fmt.Sprintf(" every %d weeks", interval)
	}
	return out
}

func printRoutine(w io.Writer, rwt model.RoutineWithTasks, recs []model.RoutineRecurrence) {
	fmt.Fprintf(w, "%s %s\n", faint.Sprintf("#%d", rwt.Routine.ID), bold.Sprint(rwt.Routine.Name))
	fmt.Fprintf(w, "  %s\n", describeSchedule(rwt.Routine, recs))
	if len(rwt.Tasks) == 0 {
		fmt.Fprintln(w, faint.Sprint("  no tasks"))
		return
	}
	for i, t := range rwt.Tasks {
		line := fmt.Sprintf("  %d. %s", i+1, t.Name)
		if t.Duration != nil {
			line += faint.Sprintf(" (%s)", service.FormatDuration(*t.Duration))
		}
		fmt.Fprintf(w, "%s %s\n", line, faint.Sprintf("#%d", t.ID))
	}
}

func printUpcoming(w io.Writer, items []service.Upcoming, loc *time.Location) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No reminders scheduled.")
		return
	}
	for _, u := range items {
		fmt.Fprintf(w, "%s  %s %s\n",
			u.At.In(loc).Format("Mon 2006-01-02 15:04"),
			u.Body,
			faint.Sprint(u.ID))
	}
}

func daysOf(recs []model.RoutineRecurrence) []model.DayOfWeek {
	out := make([]model.DayOfWeek, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.DayOfWeek(rec.DayOfWeek))
	}
	return out
}
