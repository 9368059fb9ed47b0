package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routine-tracker/internal/model"
	"routine-tracker/internal/service"
)

func newPrefsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prefs",
		Aliases: []string{"settings"},
		Short:   "Change reminder preferences",
	}
	cmd.AddCommand(
		newPrefsShowCmd(c),
		newPrefsLeadCmd(c),
		newPrefsDailyCmd(c),
	)
	return cmd
}

func newPrefsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printSettings(cmd.OutOrStdout(), c.app.settings.State())
			fmt.Fprintf(cmd.OutOrStdout(), "Backend:        %s\n", c.app.cfg.Preferences.Backend)
			return nil
		},
	}
}

func newPrefsLeadCmd(c *cli) *cobra.Command {
	options := make([]string, 0, len(model.LeadTimeOptions()))
	for _, o := range model.LeadTimeOptions() {
		options = append(options, string(o))
	}
	return &cobra.Command{
		Use:   "lead <option>",
		Short: "Set how long before a timed routine to remind",
		Long:  "Set the lead time. Options: " + strings.Join(options, ", ") + ".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lead := model.LeadTime(strings.Join(args, " "))
			if err := c.app.settings.SetLeadTime(cmd.Context(), lead); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Lead time set to %s", lead)
			return nil
		},
	}
}

func newPrefsDailyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "daily <HH:MM>",
		Short: "Set the daily reminder time for routines without a time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := service.ValidateTimeOfDay(args[0])
			if err != nil {
				return err
			}
			hour, minute := service.ParseHourMinute(at)
			if err := c.app.settings.SetDailyReminderTime(cmd.Context(), hour, minute); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Daily reminder set to %s", at)
			return nil
		},
	}
}
