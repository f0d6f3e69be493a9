// ABOUTME: Triage handler: collects symptoms, duration, and severity, then composes a grounded answer
// ABOUTME: Ground-or-decline: with no covering reference material it declines instead of improvising
package handlers

import (
	"context"
	"strings"

	"github.com/welldesk/careline/internal/models"
)

// Triage evaluates reported symptoms against the knowledge index
type Triage struct {
	retriever Retriever
	composer  Composer
	topK      int
}

// NewTriage creates the triage handler
func NewTriage(retriever Retriever, composer Composer, topK int) *Triage {
	if topK < 1 {
		topK = 4
	}
	return &Triage{retriever: retriever, composer: composer, topK: topK}
}

// Task implements TaskHandler
func (h *Triage) Task() models.TaskType {
	return models.TaskTriage
}

// Attempt collects the three triage fields, then retrieves and composes.
// Evaluated is true on any result produced with all fields present; the
// orchestrator owes exactly one safety pass for each such turn.
func (h *Triage) Attempt(ctx context.Context, patientID int64, in models.Intent, fields models.Fields, utterance string) (Result, error) {
	delta := models.Fields{}
	view := fields.Clone()
	set := func(key, value string) {
		if value != "" && view[key] == "" {
			view[key] = value
			delta[key] = value
		}
	}

	if view["symptoms"] == "" {
		set("symptoms", strings.TrimSpace(utterance))
	} else {
		set("duration", extractDuration(utterance))
		set("severity", extractSeverity(utterance))
	}

	var missing []string
	if view["duration"] == "" {
		missing = append(missing, "duration")
	}
	if view["severity"] == "" {
		missing = append(missing, "severity")
	}
	if len(missing) > 0 {
		return Result{
			Kind:     OutcomeNeedsMoreInput,
			Missing:  missing,
			Delta:    delta,
			Response: triagePrompt(missing),
		}, nil
	}

	retrieved, err := h.retriever.Search(ctx, view["symptoms"], h.topK)
	if err != nil {
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailRetrievalUnavailable,
			Delta:      delta,
			Evaluated:  true,
			Response:   "Sorry, I can't reach the medical reference material right now. Please try again in a moment.",
		}, nil
	}

	if len(retrieved) == 0 {
		return Result{
			Kind:      OutcomeDone,
			Delta:     delta,
			Retrieved: retrieved,
			Evaluated: true,
			Response: "I don't have hospital reference material covering these symptoms, so I can't assess them. " +
				"Please contact the hospital directly to speak with a member of staff.",
		}, nil
	}

	reference := strings.Join(retrieved.Texts(), "\n\n")
	answer, err := h.composer.ComposeTriageAnswer(ctx, view["symptoms"], view["duration"], view["severity"], reference)
	if err != nil {
		return Result{
			Kind:       OutcomeFailed,
			FailReason: FailUpstreamTimeout,
			Delta:      delta,
			Retrieved:  retrieved,
			Evaluated:  true,
			Response:   "Sorry, I'm having trouble putting together an answer right now. Please try again in a moment.",
		}, nil
	}

	return Result{
		Kind:      OutcomeDone,
		Delta:     delta,
		Retrieved: retrieved,
		Evaluated: true,
		Response:  answer,
	}, nil
}

// Commit is never reached: triage completes without confirmation
func (h *Triage) Commit(ctx context.Context, patientID int64, fields models.Fields) (Result, error) {
	return Result{}, errNothingToCommit("triage")
}

// triagePrompt asks for the specific fields still missing
func triagePrompt(missing []string) string {
	wantDuration := false
	wantSeverity := false
	for _, field := range missing {
		switch field {
		case "duration":
			wantDuration = true
		case "severity":
			wantSeverity = true
		}
	}

	switch {
	case wantDuration && wantSeverity:
		return "I'm sorry you're not feeling well. How long has this been going on, and how severe is it (mild, moderate, or severe)?"
	case wantDuration:
		return "How long has this been going on?"
	default:
		return "How severe would you say it is: mild, moderate, or severe?"
	}
}
