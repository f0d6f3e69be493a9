// ABOUTME: Intent is the classified task category for the latest patient utterance
// ABOUTME: Produced fresh each turn; never persisted beyond the turn that made it
package models

import "strings"

// Intent represents the classified intent of a single utterance
type Intent string

const (
	IntentSchedule      Intent = "schedule"
	IntentCancel        Intent = "cancel"
	IntentReschedule    Intent = "reschedule"
	IntentLookupRecords Intent = "records"
	IntentTriage        Intent = "triage"
	IntentHomeCare      Intent = "homecare"
	IntentClarify       Intent = "clarify"
	IntentEndSession    Intent = "end"
)

// ParseIntent maps a classifier output word to an Intent.
// Unknown or empty input fails closed to IntentClarify so the engine
// asks instead of guessing a task.
func ParseIntent(word string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(word))) {
	case IntentSchedule, IntentCancel, IntentReschedule, IntentLookupRecords,
		IntentTriage, IntentHomeCare, IntentClarify, IntentEndSession:
		return Intent(strings.ToLower(strings.TrimSpace(word)))
	default:
		return IntentClarify
	}
}

// Task returns the task a routable intent belongs to, or TaskNone for
// Clarify and EndSession.
func (i Intent) Task() TaskType {
	switch i {
	case IntentSchedule, IntentCancel, IntentReschedule:
		return TaskScheduling
	case IntentLookupRecords:
		return TaskRecordLookup
	case IntentTriage:
		return TaskTriage
	case IntentHomeCare:
		return TaskHomeCare
	default:
		return TaskNone
	}
}
