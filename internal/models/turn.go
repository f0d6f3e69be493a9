// ABOUTME: Turn represents a single utterance in a patient conversation
// ABOUTME: Core data structure for the dialogue engine's transcript
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RolePatient   Role = "patient"
	RoleAssistant Role = "assistant"
)

// Turn represents a single utterance with its timestamp
type Turn struct {
	TurnID    string    `json:"turn_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a new Turn with validation
func NewTurn(role Role, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("turn text cannot be empty")
	}
	if role != RolePatient && role != RoleAssistant {
		return nil, fmt.Errorf("invalid role: %q", role)
	}
	return &Turn{
		TurnID:    generateTurnID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}, nil
}

// generateTurnID generates a unique turn identifier
func generateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
