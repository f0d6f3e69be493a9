// ABOUTME: Orchestrator phases and the per-turn reply emitted to the presentation layer
// ABOUTME: The presentation layer renders replies without understanding task internals
package dialog

import "github.com/welldesk/careline/internal/models"

// Phase is the orchestrator's state between (and transiently during) turns
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseAwaitingTaskInput    Phase = "awaiting_task_input"
	PhaseHandlerExecuting     Phase = "handler_executing"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseEscalated            Phase = "escalated"
	PhaseSessionEnded         Phase = "session_ended"
)

// Reply is everything the presentation layer gets per turn
type Reply struct {
	Text  string          `json:"text"`
	State Phase           `json:"state"`
	Task  models.TaskType `json:"task,omitempty"`
	Ended bool            `json:"ended"`
}
