// ABOUTME: ConversationState holds per-session dialogue state for the orchestrator
// ABOUTME: Transcript, active task, per-task scratchpads, and the monotone escalation flag
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskType identifies one of the bounded sub-dialogues
type TaskType string

const (
	TaskNone         TaskType = ""
	TaskScheduling   TaskType = "scheduling"
	TaskRecordLookup TaskType = "record_lookup"
	TaskTriage       TaskType = "triage"
	TaskHomeCare     TaskType = "home_care"
)

// Fields is a scratchpad of partially collected task fields
type Fields map[string]string

// Clone returns a copy of the fields so handlers can work on a snapshot
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// ConversationState is the per-session state owned by the orchestrator.
// Handlers never mutate it; they return deltas the orchestrator merges.
type ConversationState struct {
	SessionID  string                  `json:"session_id"`
	PatientID  int64                   `json:"patient_id"`
	Turns      []Turn                  `json:"turns"`
	ActiveTask TaskType                `json:"active_task"`
	Scratchpad map[TaskType]Fields     `json:"scratchpad"`
	Escalated  bool                    `json:"escalated"`
	CreatedAt  time.Time               `json:"created_at"`
}

// NewConversationState creates fresh state for a session.
// The patient ID comes from the hosting context, never from free text.
func NewConversationState(patientID int64) *ConversationState {
	return &ConversationState{
		SessionID:  fmt.Sprintf("sess_%s", uuid.New().String()[:12]),
		PatientID:  patientID,
		Scratchpad: make(map[TaskType]Fields),
		CreatedAt:  time.Now().UTC(),
	}
}

// AppendTurn adds a turn to the transcript
func (s *ConversationState) AppendTurn(turn Turn) {
	s.Turns = append(s.Turns, turn)
}

// LastPatientText returns the text of the most recent patient turn
func (s *ConversationState) LastPatientText() string {
	for i := len(s.Turns) - 1; i >= 0; i-- {
		if s.Turns[i].Role == RolePatient {
			return s.Turns[i].Text
		}
	}
	return ""
}

// TaskFields returns the scratchpad for a task, never nil
func (s *ConversationState) TaskFields(task TaskType) Fields {
	if f, ok := s.Scratchpad[task]; ok {
		return f
	}
	return Fields{}
}

// MergeFields applies a handler delta to one task's scratchpad,
// last write wins per field name. Fields of other tasks are untouched.
func (s *ConversationState) MergeFields(task TaskType, delta Fields) {
	if len(delta) == 0 {
		return
	}
	current, ok := s.Scratchpad[task]
	if !ok {
		current = make(Fields, len(delta))
		s.Scratchpad[task] = current
	}
	for k, v := range delta {
		current[k] = v
	}
}

// ClearTask discards the scratchpad for one task
func (s *ConversationState) ClearTask(task TaskType) {
	delete(s.Scratchpad, task)
}

// MarkEscalated sets the escalation flag. There is deliberately no way
// to clear it; escalation is monotone for the life of the session.
func (s *ConversationState) MarkEscalated() {
	s.Escalated = true
}
