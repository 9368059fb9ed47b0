package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routine-tracker/internal/service"
)

func newTaskCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Manage the tasks of a routine",
	}
	cmd.AddCommand(
		newTaskAddCmd(c),
		newTaskListCmd(c),
		newTaskUpdateCmd(c),
		newTaskDeleteCmd(c),
		newTaskReorderCmd(c),
	)
	return cmd
}

func newTaskAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <routine-id> <name[:duration]>",
		Short: "Append a task to a routine",
		Long: `Append a task. A duration may follow the name after a colon.

Examples:
  routinetracker task add 1 Stretch:10m
  routinetracker task add 1 "Make coffee"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routineID, err := parseID(args[0])
			if err != nil {
				return err
			}
			input, err := parseTaskSpec(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			task, err := c.app.tasks.AddTask(cmd.Context(), routineID, input)
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			success(cmd.OutOrStdout(), "Added task #%d %s", task.ID, task.Name)
			return nil
		},
	}
}

func newTaskListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list <routine-id>",
		Aliases: []string{"ls"},
		Short:   "List a routine's tasks in order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			routineID, err := parseID(args[0])
			if err != nil {
				return err
			}
			tasks, err := c.app.tasks.ListTasks(cmd.Context(), routineID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			for i, t := range tasks {
				dur := ""
				if t.Duration != nil {
					dur = faint.Sprintf(" (%s)", service.FormatDuration(*t.Duration))
				}
				fmt.Fprintf(out, "%d. %s%s %s\n", i+1, t.Name, dur, faint.Sprintf("#%d", t.ID))
			}
			return nil
		},
	}
}

func newTaskUpdateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "update <task-id> <name[:duration]>",
		Short: "Rename a task and set its duration",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			input, err := parseTaskSpec(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			task, err := c.app.tasks.UpdateTask(cmd.Context(), taskID, input)
			if err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			success(cmd.OutOrStdout(), "Updated task #%d %s", task.ID, task.Name)
			return nil
		},
	}
}

func newTaskDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.app.tasks.DeleteTask(cmd.Context(), taskID); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			success(cmd.OutOrStdout(), "Deleted task #%d", taskID)
			return nil
		},
	}
}

func newTaskReorderCmd(c *cli) *cobra.Command {
	var to int
	cmd := &cobra.Command{
		Use:   "reorder <routine-id> <task-id>...",
		Short: "Reorder tasks",
		Long: `Give every task id of the routine in the new order, or move one task with --to.

Examples:
  routinetracker task reorder 1 4 2 3
  routinetracker task reorder 1 4 --to 0`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			routineID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := parseID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx := cmd.Context()
			if cmd.Flags().Changed("to") {
				if len(ids) != 1 {
					return fmt.Errorf("--to moves exactly one task")
				}
				err = c.app.tasks.MoveTask(ctx, routineID, ids[0], to)
			} else {
				err = c.app.tasks.ReorderTasks(ctx, routineID, ids)
			}
			if err != nil {
				return fmt.Errorf("reorder tasks: %w", err)
			}
			success(cmd.OutOrStdout(), "Reordered tasks of routine #%d", routineID)
			return nil
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "move the single given task to this 0-based position")
	return cmd
}
