package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"routine-tracker/internal/logging"
	"routine-tracker/internal/mcp"
)

func newMCPCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol (MCP) server so assistants can read and
edit routines. The server communicates via stdin/stdout; logs go to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "routines": { "command": "routinetracker", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  list_routines    List routines with schedule and tasks
  get_routine      Get one routine
  create_routine   Create a routine with days and tasks
  delete_routine   Delete a routine
  add_task         Append a task to a routine
  set_reminders    Turn reminders on or off, change lead or daily time
  next_reminders   Preview the next reminders`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a := c.app
			server := mcp.NewServer(a.routines, a.tasks, a.settings, a.clock, version, logging.Component(a.log, "mcp"))
			return server.Serve(ctx)
		},
	}
}
