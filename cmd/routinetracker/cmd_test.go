package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"routine-tracker/internal/model"
	"routine-tracker/internal/repository"
	"routine-tracker/internal/service"
)

func init() {
	color.NoColor = true
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "database:\n" +
		"  driver: sqlite\n" +
		"  path: " + filepath.Join(dir, "routines.db") + "\n" +
		"preferences:\n" +
		"  backend: file\n" +
		"  path: " + filepath.Join(dir, "preferences.yaml") + "\n" +
		"timezone: UTC\n" +
		"log:\n" +
		"  level: error\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(cfgPath string, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func run(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(cfgPath, args...)
	require.NoError(t, err, "routinetracker %s", strings.Join(args, " "))
	return out
}

func TestRoutineAddListShow(t *testing.T) {
	cfg := writeConfig(t)

	out := run(t, cfg, "routine", "add", "Morning", "Run", "--time", "07:30", "--days", "mon,wed",
		"--task", "Stretch:10m", "--task", "Run")
	require.Contains(t, out, "Created routine #1 Morning Run")

	out = run(t, cfg, "routine", "list")
	require.Contains(t, out, "Morning Run")
	require.Contains(t, out, "07:30 on Mon, Wed")
	require.Contains(t, out, "(2 tasks)")

	out = run(t, cfg, "routine", "show", "1")
	require.Contains(t, out, "1. Stretch (10m)")
	require.Contains(t, out, "2. Run")
}

func TestRoutineAddRejectsBadInput(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(cfg, "routine", "add", "Late", "--time", "25:00")
	require.ErrorIs(t, err, service.ErrInvalidTime)

	_, err = execute(cfg, "routine", "add", "Odd", "--days", "funday")
	require.Error(t, err)

	_, err = execute(cfg, "routine", "show", "42")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRoutineUpdate(t *testing.T) {
	cfg := writeConfig(t)
	run(t, cfg, "routine", "add", "Gym", "--time", "18:00", "--days", "tue")

	run(t, cfg, "routine", "update", "1", "--every", "2")
	require.Contains(t, run(t, cfg, "routine", "list"), "18:00 on Tue every 2 weeks")

	run(t, cfg, "routine", "update", "1", "--clear-time", "--name", "Gym session", "--days", "weekends")
	out := run(t, cfg, "routine", "list")
	require.Contains(t, out, "Gym session")
	require.Contains(t, out, "any time on Sat, Sun")

	run(t, cfg, "routine", "update", "1", "--days", "none")
	require.Contains(t, run(t, cfg, "routine", "list"), "any time, no days")
}

func TestRoutineDelete(t *testing.T) {
	cfg := writeConfig(t)
	run(t, cfg, "routine", "add", "Evening", "--task", "Journal")

	require.Contains(t, run(t, cfg, "routine", "delete", "1"), "Deleted routine #1")
	require.Contains(t, run(t, cfg, "routine", "list"), "No routines yet.")
}

func TestTaskCommands(t *testing.T) {
	cfg := writeConfig(t)
	run(t, cfg, "routine", "add", "Morning", "--task", "Wake", "--task", "Coffee")

	require.Contains(t, run(t, cfg, "task", "add", "1", "Make", "bed:2m"), "Added task #3 Make bed")

	run(t, cfg, "task", "reorder", "1", "3", "1", "2")
	out := run(t, cfg, "task", "list", "1")
	require.Less(t, strings.Index(out, "Make bed"), strings.Index(out, "Wake"))
	require.Less(t, strings.Index(out, "Wake"), strings.Index(out, "Coffee"))

	run(t, cfg, "task", "reorder", "1", "2", "--to", "0")
	out = run(t, cfg, "task", "list", "1")
	require.True(t, strings.HasPrefix(out, "1. Coffee"), out)

	run(t, cfg, "task", "update", "2", "Espresso:1m")
	run(t, cfg, "task", "delete", "1")
	out = run(t, cfg, "task", "list", "1")
	require.Contains(t, out, "1. Espresso (1m)")
	require.Contains(t, out, "2. Make bed (2m)")
	require.NotContains(t, out, "Wake")

	_, err := execute(cfg, "task", "reorder", "1", "2")
	require.Error(t, err)
}

func TestRemindersPersistAcrossRuns(t *testing.T) {
	cfg := writeConfig(t)
	run(t, cfg, "routine", "add", "Standup", "--time", "09:30", "--days", "daily")
	run(t, cfg, "routine", "add", "Laundry")

	require.Contains(t, run(t, cfg, "reminders", "next"), "Reminders are off.")

	run(t, cfg, "reminders", "on")
	require.Contains(t, run(t, cfg, "reminders", "status"), "Reminders:      on")

	out := run(t, cfg, "reminders", "next")
	require.Contains(t, out, "Soon: Standup")
	require.Contains(t, out, "You have 1 routines to start")
	require.Contains(t, out, service.DailyReminderID)

	run(t, cfg, "reminders", "off")
	require.Contains(t, run(t, cfg, "reminders", "status"), "Reminders:      off")
}

func TestPrefsCommands(t *testing.T) {
	cfg := writeConfig(t)

	out := run(t, cfg, "prefs", "show")
	require.Contains(t, out, "Lead time:      15 min")
	require.Contains(t, out, "Daily reminder: 09:00")
	require.Contains(t, out, "Backend:        file")

	run(t, cfg, "prefs", "lead", "30", "min")
	run(t, cfg, "prefs", "daily", "7:05")
	out = run(t, cfg, "prefs", "show")
	require.Contains(t, out, "Lead time:      30 min")
	require.Contains(t, out, "Daily reminder: 07:05")

	_, err := execute(cfg, "prefs", "lead", "2 days")
	require.ErrorIs(t, err, service.ErrUnknownLeadTime)

	_, err = execute(cfg, "prefs", "daily", "24:00")
	require.ErrorIs(t, err, service.ErrInvalidTime)
}

func TestVersionSkipsApp(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database:\n  driver: postgres\n"), 0o600))

	_, err := execute(bad, "routine", "list")
	require.Error(t, err)

	out, err := execute(bad, "version")
	require.NoError(t, err)
	require.Contains(t, out, "routinetracker "+version)
}

func TestParseTaskSpec(t *testing.T) {
	in, err := parseTaskSpec("Stretch:1h5m")
	require.NoError(t, err)
	require.Equal(t, "Stretch", in.Name)
	require.NotNil(t, in.DurationSeconds)
	require.Equal(t, 3900, *in.DurationSeconds)

	in, err = parseTaskSpec(" Read ")
	require.NoError(t, err)
	require.Equal(t, "Read", in.Name)
	require.Nil(t, in.DurationSeconds)

	_, err = parseTaskSpec("Nap:soon")
	require.Error(t, err)
}

func TestParseDaysFlag(t *testing.T) {
	days, err := parseDaysFlag("weekdays")
	require.NoError(t, err)
	require.Len(t, days, 5)

	days, err = parseDaysFlag("sun, 1,mon")
	require.NoError(t, err)
	require.Equal(t, []model.DayOfWeek{model.Sunday, model.Monday}, days)

	days, err = parseDaysFlag("none")
	require.NoError(t, err)
	require.NotNil(t, days)
	require.Empty(t, days)
}

func TestParseID(t *testing.T) {
	id, err := parseID("#12")
	require.NoError(t, err)
	require.Equal(t, uint(12), id)

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(raw)
		require.Error(t, err, raw)
	}
}
