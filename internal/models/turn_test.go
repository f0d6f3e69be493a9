// ABOUTME: Tests for Turn creation and validation
// ABOUTME: Verifies ID format, role validation, and empty-text rejection
package models

import (
	"strings"
	"testing"
)

func TestNewTurn(t *testing.T) {
	turn, err := NewTurn(RolePatient, "I have a headache")
	if err != nil {
		t.Fatalf("NewTurn() error = %v", err)
	}

	if turn.Role != RolePatient {
		t.Errorf("Role = %q, want %q", turn.Role, RolePatient)
	}
	if turn.Text != "I have a headache" {
		t.Errorf("Text = %q, want original text", turn.Text)
	}
	if !strings.HasPrefix(turn.TurnID, "turn_") {
		t.Errorf("TurnID = %q, want turn_ prefix", turn.TurnID)
	}
	if turn.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewTurn_EmptyText(t *testing.T) {
	if _, err := NewTurn(RolePatient, "   "); err == nil {
		t.Error("NewTurn() should reject whitespace-only text")
	}
}

func TestNewTurn_InvalidRole(t *testing.T) {
	if _, err := NewTurn(Role("doctor"), "hello"); err == nil {
		t.Error("NewTurn() should reject unknown roles")
	}
}

func TestNewTurn_UniqueIDs(t *testing.T) {
	a, _ := NewTurn(RolePatient, "first")
	b, _ := NewTurn(RolePatient, "second")
	if a.TurnID == b.TurnID {
		t.Errorf("turn IDs should be unique, both = %q", a.TurnID)
	}
}
