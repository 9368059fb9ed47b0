package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"routine-tracker/internal/service"
)

func newRemindersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Turn reminders on or off and preview them",
		Long: `Reminders fire before each timed routine (see "prefs lead") and once a day
for routines without a time (see "prefs daily"). Delivery happens in "serve";
these commands change the stored settings the daemon picks up.`,
	}
	cmd.AddCommand(
		newRemindersToggleCmd(c, "on", true),
		newRemindersToggleCmd(c, "off", false),
		newRemindersStatusCmd(c),
		newRemindersNextCmd(c),
	)
	return cmd
}

func newRemindersToggleCmd(c *cli, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: "Turn reminders " + use,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.settings.ToggleReminders(cmd.Context(), enabled); err != nil {
				return fmt.Errorf("toggle reminders: %w", err)
			}
			success(cmd.OutOrStdout(), "Reminders %s", use)
			return nil
		},
	}
}

func newRemindersStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show reminder settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSettings(cmd.OutOrStdout(), c.app.settings.State())
			return nil
		},
	}
}

func newRemindersNextCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "List the next reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.settings.Resync(cmd.Context()); err != nil {
				return fmt.Errorf("compute reminders: %w", err)
			}
			out := cmd.OutOrStdout()
			if !c.app.settings.State().RemindersEnabled {
				fmt.Fprintln(out, "Reminders are off.")
				return nil
			}
			printUpcoming(out, c.app.settings.Upcoming(), c.app.clock.Location())
			return nil
		},
	}
}

func printSettings(w io.Writer, st service.SettingsState) {
	state := "off"
	if st.RemindersEnabled {
		state = green.Sprint("on")
	}
	fmt.Fprintf(w, "Reminders:      %s\n", state)
	fmt.Fprintf(w, "Lead time:      %s\n", st.SelectedLead)
	fmt.Fprintf(w, "Daily reminder: %s\n", service.FormatTime(st.DailyHour, st.DailyMinute))
}
