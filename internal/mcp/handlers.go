// ABOUTME: MCP tool handler implementations over the dialogue session manager
// ABOUTME: Thin adapters; they never reach into task internals
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/welldesk/careline/internal/dialog"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	manager *dialog.Manager
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		patientID := request.GetFloat("patient_id", 0)
		if patientID <= 0 {
			return mcp.NewToolResultError("patient_id is required when starting a new session"), nil
		}
		sess := h.manager.Create(int64(patientID))
		sessionID = sess.State.SessionID
	}

	reply, err := h.manager.SendMessage(ctx, sessionID, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("send failed: %v", err)), nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"response":   reply.Text,
		"state":      reply.State,
		"task":       reply.Task,
		"ended":      reply.Ended,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode reply: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// GetSessionState handles the get_session_state tool
func (h *Handlers) GetSessionState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	sess, ok := h.manager.Get(sessionID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", sessionID)), nil
	}

	view := sess.Snapshot()
	payload, err := json.Marshal(map[string]interface{}{
		"session_id": sessionID,
		"state":      view.Phase,
		"task":       view.Task,
		"escalated":  view.Escalated,
		"turns":      view.Turns,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// EndSession handles the end_session tool
func (h *Handlers) EndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	if !h.manager.Abort(sessionID) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", sessionID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"session_id": %q, "aborted": true}`, sessionID)), nil
}
