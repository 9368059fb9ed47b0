package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routine-tracker/internal/service"
)

func newRoutineCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routine",
		Aliases: []string{"routines", "r"},
		Short:   "Manage routines",
	}
	cmd.AddCommand(
		newRoutineAddCmd(c),
		newRoutineListCmd(c),
		newRoutineShowCmd(c),
		newRoutineUpdateCmd(c),
		newRoutineDeleteCmd(c),
	)
	return cmd
}

func newRoutineAddCmd(c *cli) *cobra.Command {
	var (
		at    string
		days  string
		every int
		tasks []string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a routine",
		Long: `Create a routine with optional start time, weekdays and tasks.

Examples:
  routinetracker routine add Morning --time 07:30 --days weekdays
  routinetracker routine add "Long run" --time 06:00 --days sun --every 2
  routinetracker routine add Evening --task "Journal:10m" --task Read`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := service.RoutineInput{
				Name:          strings.Join(args, " "),
				Time:          at,
				IntervalWeeks: every,
			}
			if days != "" {
				parsed, err := parseDaysFlag(days)
				if err != nil {
					return err
				}
				input.Days = parsed
			}
			for _, raw := range tasks {
				ti, err := parseTaskSpec(raw)
				if err != nil {
					return err
				}
				input.Tasks = append(input.Tasks, ti)
			}

			created, err := c.app.routines.CreateRoutine(cmd.Context(), input)
			if err != nil {
				return fmt.Errorf("create routine: %w", err)
			}
			success(cmd.OutOrStdout(), "Created routine #%d %s", created.Routine.ID, created.Routine.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "time", "", "start time HH:MM (empty for any time)")
	cmd.Flags().StringVar(&days, "days", "", `weekdays: "mon,wed", "weekdays", "weekends" or "daily"`)
	cmd.Flags().IntVar(&every, "every", 1, "repeat every N weeks")
	cmd.Flags().StringArrayVar(&tasks, "task", nil, `task "Name" or "Name:10m" (repeatable)`)
	return cmd
}

func newRoutineListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List routines",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			routines, err := c.app.routines.ListRoutines(ctx)
			if err != nil {
				return fmt.Errorf("list routines: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(routines) == 0 {
				fmt.Fprintln(out, "No routines yet.")
				return nil
			}
			recs, err := c.app.routines.RecurrenceMap(ctx)
			if err != nil {
				return fmt.Errorf("list routines: %w", err)
			}
			for _, r := range routines {
				fmt.Fprintf(out, "%s %s  %s %s\n",
					faint.Sprintf("#%d", r.Routine.ID),
					r.Routine.Name,
					describeSchedule(r.Routine, recs[r.Routine.ID]),
					faint.Sprintf("(%d tasks)", len(r.Tasks)))
			}
			return nil
		},
	}
}

func newRoutineShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a routine with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rwt, err := c.app.routines.GetRoutine(ctx, id)
			if err != nil {
				return err
			}
			recs, err := c.app.routines.Recurrences(ctx, id)
			if err != nil {
				return err
			}
			printRoutine(cmd.OutOrStdout(), *rwt, recs)
			return nil
		},
	}
}

func newRoutineUpdateCmd(c *cli) *cobra.Command {
	var (
		name      string
		at        string
		clearTime bool
		days      string
		every     int
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a routine's name, time or days",
		Long: `Change a routine. Flags that are not given keep their current value.

Examples:
  routinetracker routine update 3 --time 08:00
  routinetracker routine update 3 --clear-time
  routinetracker routine update 3 --days sat,sun --every 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := c.app.routines.GetRoutine(ctx, id)
			if err != nil {
				return err
			}

			input := service.RoutineInput{
				Name: current.Routine.Name,
				Time: current.Routine.TimeString(),
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				input.Name = name
			}
			if clearTime {
				input.Time = ""
			} else if flags.Changed("time") {
				input.Time = at
			}
			if flags.Changed("days") {
				parsed, err := parseDaysFlag(days)
				if err != nil {
					return err
				}
				input.Days = parsed
				input.IntervalWeeks = every
			} else if flags.Changed("every") {
				recs, err := c.app.routines.Recurrences(ctx, id)
				if err != nil {
					return err
				}
				input.Days = daysOf(recs)
				input.IntervalWeeks = every
			}

			updated, err := c.app.routines.UpdateRoutine(ctx, id, input)
			if err != nil {
				return fmt.Errorf("update routine: %w", err)
			}
			success(cmd.OutOrStdout(), "Updated routine #%d %s", updated.Routine.ID, updated.Routine.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&at, "time", "", "start time HH:MM")
	cmd.Flags().BoolVar(&clearTime, "clear-time", false, "remove the start time")
	cmd.Flags().StringVar(&days, "days", "", `weekdays, or "none" to clear`)
	cmd.Flags().IntVar(&every, "every", 1, "repeat every N weeks")
	return cmd
}

func newRoutineDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a routine with its tasks and reminders",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.routines.DeleteRoutine(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete routine: %w", err)
			}
			success(cmd.OutOrStdout(), "Deleted routine #%d", id)
			return nil
		},
	}
}
