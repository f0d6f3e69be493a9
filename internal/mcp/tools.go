// ABOUTME: MCP tool definitions and registration for the careline assistant
// ABOUTME: Exposes the per-turn presentation contract to agent hosts over stdio
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/welldesk/careline/internal/dialog"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, manager *dialog.Manager) *Handlers {
	handlers := &Handlers{manager: manager}

	// 1. send_message - deliver one patient utterance
	server.AddTool(mcp.Tool{
		Name: "send_message",
		Description: "Send one patient message to the assistant. Omit session_id to start a new session " +
			"for the given patient_id; the reply carries the session_id to use for follow-up turns.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to continue; omit to start a new session",
				},
				"patient_id": map[string]interface{}{
					"type":        "number",
					"description": "Authenticated patient id; required when starting a new session",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The patient's utterance",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.SendMessage)

	// 2. get_session_state - inspect a session without advancing it
	server.AddTool(mcp.Tool{
		Name:        "get_session_state",
		Description: "Get the current state tag, active task, and escalation flag for a session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to inspect",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetSessionState)

	// 3. end_session - abort a session between turns
	server.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "Abort a session, discarding its state and any unconfirmed booking.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to abort",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.EndSession)

	return handlers
}
