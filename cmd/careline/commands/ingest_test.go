// ABOUTME: Tests for ingest command structure
// ABOUTME: Verifies argument requirements and configuration
package commands

import "testing"

func TestNewIngestCmd(t *testing.T) {
	cmd := NewIngestCmd()

	if cmd.Use != "ingest [files...]" {
		t.Errorf("Use = %q, want %q", cmd.Use, "ingest [files...]")
	}
	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
	if cmd.Args == nil {
		t.Error("Args validator should require at least one file")
	}
}
