// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agent hosts to run patient conversations via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/welldesk/careline/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for agent hosts",
		Long: `Start MCP server for agent hosts

Runs Careline as an MCP (Model Context Protocol) server, exposing
send_message, get_session_state, and end_session tools over stdio.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by the agent host)
  careline mcp

  # Configure in the host's MCP config:
  # {
  #   "mcpServers": {
  #     "careline": {
  #       "command": "careline",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Println("Warning: OPENAI_API_KEY not set - classification and retrieval will not work")
	}

	a, err := buildAssistant()
	if err != nil {
		return fmt.Errorf("failed to initialize assistant: %w", err)
	}
	defer func() { _ = a.Close() }()

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Careline Assistant",
		"0.1.0",
	)

	mcp.RegisterTools(server, a.manager)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Careline MCP server starting on stdio...")
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, shutting down...")
		}
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
