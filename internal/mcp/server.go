// Package mcp exposes routines and reminders to assistants over the Model
// Context Protocol (stdio transport).
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"routine-tracker/internal/service"
)

// Server wraps the MCP server with service access.
type Server struct {
	mcpServer *mcp.Server
	routines  *service.RoutineService
	tasks     *service.TaskService
	settings  *service.SettingsService
	clock     service.Clock
	log       zerolog.Logger
}

func NewServer(routines *service.RoutineService, tasks *service.TaskService, settings *service.SettingsService, clock service.Clock, version string, log zerolog.Logger) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "routine-tracker",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		routines:  routines,
		tasks:     tasks,
		settings:  settings,
		clock:     clock,
		log:       log,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info().Msg("mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
