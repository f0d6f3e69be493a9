// ABOUTME: SafetyVerdict is the safety monitor's decision for one triage turn
// ABOUTME: Escalate permanently marks the session as escalated
package models

// SafetyDecision is the outcome of a safety inspection
type SafetyDecision string

const (
	SafetyClear    SafetyDecision = "clear"
	SafetyEscalate SafetyDecision = "escalate"
)

// SafetyVerdict carries the decision plus a human-readable justification
type SafetyVerdict struct {
	Decision      SafetyDecision `json:"decision"`
	Justification string         `json:"justification"`
}

// Escalated reports whether the verdict demands escalation
func (v SafetyVerdict) Escalated() bool {
	return v.Decision == SafetyEscalate
}
