// ABOUTME: HomeCare handler: grounded home-care guidance for non-urgent symptoms
// ABOUTME: Hands off to triage when retrieved guidance exceeds home-care scope
package handlers

import (
	"context"
	"strings"

	"github.com/welldesk/careline/internal/models"
	"github.com/welldesk/careline/internal/safety"
)

// HomeCare produces advisory text grounded in the knowledge index. It never
// issues its own escalation: anything beyond home-care scope is redirected
// back to triage for a proper safety evaluation.
type HomeCare struct {
	retriever Retriever
	composer  Composer
	scope     *safety.Monitor
	topK      int
}

// NewHomeCare creates the home-care handler. The monitor here only gates
// scope; the authoritative escalation decision stays with the triage flow.
func NewHomeCare(retriever Retriever, composer Composer, scope *safety.Monitor, topK int) *HomeCare {
	if topK < 1 {
		topK = 4
	}
	return &HomeCare{retriever: retriever, composer: composer, scope: scope, topK: topK}
}

// Task implements TaskHandler
func (h *HomeCare) Task() models.TaskType {
	return models.TaskHomeCare
}

// Attempt collects the symptom description, retrieves guidance, and either
// composes advice or redirects to triage
func (h *HomeCare) Attempt(ctx context.Context, patientID int64, in models.Intent, fields models.Fields, utterance string) (Result, error) {
	delta := models.Fields{}
	symptoms := fields["symptoms"]
	if symptoms == "" {
		symptoms = strings.TrimSpace(utterance)
		delta["symptoms"] = symptoms
	}
	if symptoms == "" {
		return Result{
			Kind:     OutcomeNeedsMoreInput,
			Missing:  []string{"symptoms"},
			Response: "What symptoms would you like home-care advice for?",
		}, nil
	}

	// Beyond home-care scope: hand off rather than improvise advice.
	// The symptom check must not depend on the index being reachable.
	if h.scope.Inspect(models.Fields{"symptoms": symptoms}, nil, "").Escalated() {
		return Result{
			Kind:             OutcomeDone,
			Delta:            delta,
			RedirectToTriage: true,
		}, nil
	}

	retrieved, err := h.retriever.Search(ctx, symptoms, h.topK)
	if err != nil {
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailRetrievalUnavailable,
			Delta:      delta,
			Response:   "Sorry, I can't reach the medical reference material right now. Please try again in a moment.",
		}, nil
	}

	// Retrieved guidance can itself flag an emergency
	if h.scope.Inspect(models.Fields{"symptoms": symptoms}, retrieved, "").Escalated() {
		return Result{
			Kind:             OutcomeDone,
			Delta:            delta,
			RedirectToTriage: true,
		}, nil
	}

	if len(retrieved) == 0 {
		return Result{
			Kind:  OutcomeDone,
			Delta: delta,
			Response: "I don't have hospital reference material covering these symptoms, so I can't suggest home care for them. " +
				"Please contact the hospital directly.",
		}, nil
	}

	reference := strings.Join(retrieved.Texts(), "\n\n")
	advice, err := h.composer.ComposeHomeCareAdvice(ctx, symptoms, reference)
	if err != nil {
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailUpstreamTimeout,
			Delta:      delta,
			Response:   "Sorry, I'm having trouble putting together advice right now. Please try again in a moment.",
		}, nil
	}

	return Result{
		Kind:     OutcomeDone,
		Delta:    delta,
		Response: advice,
	}, nil
}

// Commit is never reached: home-care advice completes without confirmation
func (h *HomeCare) Commit(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	return Result{}, errNothingToCommit("home care")
}
