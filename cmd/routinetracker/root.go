package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cli carries the global flags and the app opened for the running command.
type cli struct {
	configPath string
	app        *app
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "routinetracker",
		Short: "Routine tracker with weekly reminders",
		Long: `Routinetracker keeps named routines of tasks and reminds you before they start.

ROUTINES:

  A routine has a name, an optional start time (HH:MM) and the weekdays it
  repeats on, every N weeks. Routines without a time are covered by one
  daily reminder that counts them.

QUICK START:

  $ routinetracker routine add Morning --time 07:30 --days mon,wed,fri --task "Stretch:10m"
  $ routinetracker reminders on
  $ routinetracker prefs lead "30 min"
  $ routinetracker reminders next
  $ routinetracker serve                # deliver reminders (Telegram or log)

CONFIGURATION:

  --config points at a YAML file (or set ROUTINES_CONFIG). Every key can be
  overridden from the environment, e.g. ROUTINES_DB_PATH, ROUTINES_TZ,
  TELEGRAM_TOKEN and TELEGRAM_CHAT_ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipApp(cmd) {
				return nil
			}
			a, err := openApp(cmd.Context(), c.configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			err := c.app.Close()
			c.app = nil
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to the YAML config file (default $ROUTINES_CONFIG)")

	root.AddCommand(
		newRoutineCmd(c),
		newTaskCmd(c),
		newRemindersCmd(c),
		newPrefsCmd(c),
		newServeCmd(c),
		newMCPCmd(c),
		newVersionCmd(),
	)
	return root
}

func skipApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion":
		return true
	}
	return !cmd.Runnable()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "routinetracker "+version)
		},
	}
}
