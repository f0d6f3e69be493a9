// ABOUTME: TaskHandler capability, handler results, and the intent-keyed dispatch table
// ABOUTME: Handlers are pure over their inputs; the orchestrator merges returned deltas
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/welldesk/careline/internal/models"
)

// errNothingToCommit is returned by handlers whose tasks complete without
// a confirmation step
func errNothingToCommit(task string) error {
	return fmt.Errorf("%s has nothing to commit", task)
}

// Failure reasons surfaced to the orchestrator
const (
	FailSlotUnavailable      = "slot_unavailable"
	FailRecordNotFound       = "record_not_found"
	FailUpstreamTimeout      = "upstream_timeout"
	FailRetrievalUnavailable = "retrieval_unavailable"
)

// OutcomeKind is a handler's report for one invocation
type OutcomeKind string

const (
	OutcomeNeedsMoreInput OutcomeKind = "needs_more_input"
	OutcomeReadyToConfirm OutcomeKind = "ready_to_confirm"
	OutcomeDone           OutcomeKind = "done"
	OutcomeFailed         OutcomeKind = "failed"
)

// Result is what a handler returns from one invocation. Delta carries
// proposed scratchpad updates; handlers never mutate state directly.
type Result struct {
	Kind     OutcomeKind
	Response string
	Delta    models.Fields

	// NeedsMoreInput
	Missing []string

	// ReadyToConfirm
	Summary string

	// Failed
	FailReason string

	// HomeCare handoff: the orchestrator re-routes the task to triage
	RedirectToTriage bool

	// Triage: retrieval scoped to this turn, and whether the turn reached
	// a full evaluation (all fields present), which obliges a safety pass
	Retrieved models.RetrievalResult
	Evaluated bool
}

// TaskHandler is the capability every task implements. Attempt never
// mutates the passed fields; Commit performs the confirmed side effect.
type TaskHandler interface {
	Task() models.TaskType
	Attempt(ctx context.Context, patientID int64, in models.Intent, fields models.Fields, utterance string) (Result, error)
	Commit(ctx context.Context, patientID int64, fields models.Fields) (Result, error)
}

// Retriever answers nearest-neighbor queries against the knowledge index
type Retriever interface {
	Search(ctx context.Context, query string, maxResults int) (models.RetrievalResult, error)
}

// Composer generates grounded response text from retrieved reference material
type Composer interface {
	ComposeTriageAnswer(ctx context.Context, symptoms, duration, severity, reference string) (string, error)
	ComposeHomeCareAdvice(ctx context.Context, symptoms, reference string) (string, error)
}

// DateTimeExtractor resolves dates and times from free text
type DateTimeExtractor interface {
	ExtractDateTime(ctx context.Context, text string, now time.Time) (date, clock string, err error)
}

// Registry is the explicit lookup table from intent to handler
type Registry struct {
	byIntent map[models.Intent]TaskHandler
}

// NewRegistry builds the dispatch table. Schedule, cancel, and reschedule
// all route to the scheduling handler.
func NewRegistry(scheduling, lookup, triage, homeCare TaskHandler) *Registry {
	return &Registry{
		byIntent: map[models.Intent]TaskHandler{
			models.IntentSchedule:      scheduling,
			models.IntentCancel:        scheduling,
			models.IntentReschedule:    scheduling,
			models.IntentLookupRecords: lookup,
			models.IntentTriage:        triage,
			models.IntentHomeCare:      homeCare,
		},
	}
}

// ForIntent returns the handler for a routable intent
func (r *Registry) ForIntent(in models.Intent) (TaskHandler, bool) {
	h, ok := r.byIntent[in]
	return h, ok
}

// ForTask returns the handler continuing an in-progress task
func (r *Registry) ForTask(task models.TaskType) (TaskHandler, bool) {
	for _, h := range r.byIntent {
		if h.Task() == task {
			return h, true
		}
	}
	return nil, false
}
