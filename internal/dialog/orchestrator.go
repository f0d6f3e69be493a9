// ABOUTME: Dialogue orchestrator: classifies, dispatches, merges deltas, and enforces escalation
// ABOUTME: Exactly one handler invocation per user turn; handlers never touch state directly
package dialog

import (
	"context"
	"log"
	"strings"

	"github.com/welldesk/careline/internal/handlers"
	"github.com/welldesk/careline/internal/models"
	"github.com/welldesk/careline/internal/safety"
)

const (
	clarifyResponse = "I can help you book, cancel, or reschedule appointments, look up your records, " +
		"check symptoms, or suggest home care. What would you like to do?"
	goodbyeResponse         = "Take care! Your session has ended."
	sessionEndedResponse    = "This session has ended. Please start a new one if you need anything else."
	confirmRepromptResponse = "Sorry, I need a clear yes or no. Shall I go ahead?"
	declinedResponse        = "Okay, I won't go ahead with that. Is there anything else I can help with?"
	triageLockedResponse    = "Based on your earlier symptoms, please seek emergency care as advised. " +
		"I can't continue symptom assessment in this session, but I can still help with appointments or records."
	internalErrorResponse = "Sorry, something went wrong on my end. Please try that again."
)

// Classifier maps an utterance and state snapshot to an intent
type Classifier interface {
	Classify(ctx context.Context, utterance string, state *models.ConversationState) models.Intent
}

// Orchestrator drives the per-turn state machine for one or more sessions.
// It owns all mutations of ConversationState.
type Orchestrator struct {
	classifier Classifier
	registry   *handlers.Registry
	monitor    *safety.Monitor
}

// NewOrchestrator creates the orchestrator
func NewOrchestrator(classifier Classifier, registry *handlers.Registry, monitor *safety.Monitor) *Orchestrator {
	return &Orchestrator{classifier: classifier, registry: registry, monitor: monitor}
}

// ProcessTurn handles one patient turn for one session. The caller
// guarantees turns of a session are processed one at a time.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sess *Session, utterance string) (Reply, error) {
	state := sess.State

	if sess.Phase == PhaseSessionEnded {
		return Reply{Text: sessionEndedResponse, State: PhaseSessionEnded, Ended: true}, nil
	}

	patientTurn, err := models.NewTurn(models.RolePatient, utterance)
	if err != nil {
		return o.reply(sess, clarifyResponse), nil
	}
	state.AppendTurn(*patientTurn)

	if sess.Phase == PhaseAwaitingConfirmation {
		return o.handleConfirmation(ctx, sess, utterance)
	}

	in := o.classifier.Classify(ctx, utterance, state)

	if in == models.IntentEndSession {
		sess.Phase = PhaseSessionEnded
		state.ActiveTask = models.TaskNone
		return o.reply(sess, goodbyeResponse), nil
	}

	if in == models.IntentClarify {
		return o.reply(sess, clarifyResponse), nil
	}

	task := in.Task()

	// Escalated is terminal for triage only; other tasks stay reachable
	if state.Escalated && task == models.TaskTriage {
		return o.reply(sess, triageLockedResponse), nil
	}

	handler, ok := o.registry.ForIntent(in)
	if !ok {
		return o.reply(sess, clarifyResponse), nil
	}

	state.ActiveTask = task
	sess.Phase = PhaseHandlerExecuting

	result, err := handler.Attempt(ctx, state.PatientID, in, state.TaskFields(task), utterance)
	if err != nil {
		log.Printf("[Orchestrator] handler %s failed: %v", task, err)
		sess.Phase = PhaseAwaitingTaskInput
		return o.reply(sess, internalErrorResponse), nil
	}

	// Apply the delta only after the call fully resolved
	state.MergeFields(task, result.Delta)

	// Independent safety pass for every fully evaluated triage turn.
	// It runs even when retrieval failed: field-level red flags must
	// never be lost, and an escalation is never swallowed.
	if task == models.TaskTriage && result.Evaluated {
		verdict := o.monitor.Inspect(state.TaskFields(task), result.Retrieved, result.Response)
		if verdict.Escalated() {
			log.Printf("[Safety] session %s escalated: %s", state.SessionID, verdict.Justification)
			state.MarkEscalated()
			state.ClearTask(models.TaskTriage)
			state.ActiveTask = models.TaskNone
			sess.Phase = PhaseEscalated
			return o.reply(sess, safety.EscalationMessage), nil
		}
	}

	if result.RedirectToTriage {
		return o.redirectToTriage(sess), nil
	}

	return o.applyOutcome(sess, task, result), nil
}

// handleConfirmation resolves an AwaitingConfirmation turn
func (o *Orchestrator) handleConfirmation(ctx context.Context, sess *Session, utterance string) (Reply, error) {
	state := sess.State
	task := state.ActiveTask

	switch {
	case isAffirmative(utterance):
		handler, ok := o.registry.ForTask(task)
		if !ok {
			sess.Phase = PhaseIdle
			state.ActiveTask = models.TaskNone
			return o.reply(sess, internalErrorResponse), nil
		}

		result, err := handler.Commit(ctx, state.PatientID, state.TaskFields(task))
		if err != nil {
			log.Printf("[Orchestrator] commit for %s failed: %v", task, err)
			sess.Phase = PhaseAwaitingTaskInput
			return o.reply(sess, internalErrorResponse), nil
		}
		state.MergeFields(task, result.Delta)
		return o.applyOutcome(sess, task, result), nil

	case isNegative(utterance):
		// One rejected confirmation cancels the task outright
		state.ClearTask(task)
		state.ActiveTask = models.TaskNone
		sess.Phase = o.restingPhase(sess)
		return o.reply(sess, declinedResponse), nil

	default:
		return o.reply(sess, confirmRepromptResponse), nil
	}
}

// applyOutcome maps a handler result onto the next phase
func (o *Orchestrator) applyOutcome(sess *Session, task models.TaskType, result handlers.Result) Reply {
	state := sess.State

	switch result.Kind {
	case handlers.OutcomeNeedsMoreInput:
		sess.Phase = PhaseAwaitingTaskInput
	case handlers.OutcomeReadyToConfirm:
		sess.Phase = PhaseAwaitingConfirmation
	case handlers.OutcomeDone:
		state.ClearTask(task)
		state.ActiveTask = models.TaskNone
		sess.Phase = o.restingPhase(sess)
	case handlers.OutcomeFailed:
		// Re-enter the task so the patient can retry, never silently retry
		sess.Phase = PhaseAwaitingTaskInput
	default:
		log.Printf("[Orchestrator] unknown outcome %q from %s", result.Kind, task)
		sess.Phase = PhaseIdle
	}

	return o.reply(sess, result.Response)
}

// redirectToTriage converts a home-care turn into a pending triage task
// without a second handler invocation this turn
func (o *Orchestrator) redirectToTriage(sess *Session) Reply {
	state := sess.State
	symptoms := state.TaskFields(models.TaskHomeCare)["symptoms"]

	state.ClearTask(models.TaskHomeCare)
	if state.Escalated {
		// Triage is closed for this session; point straight to care
		state.ActiveTask = models.TaskNone
		sess.Phase = o.restingPhase(sess)
		return o.reply(sess, triageLockedResponse)
	}

	state.MergeFields(models.TaskTriage, models.Fields{"symptoms": symptoms})
	state.ActiveTask = models.TaskTriage
	sess.Phase = PhaseAwaitingTaskInput
	return o.reply(sess, "This sounds like it needs a closer look rather than home care. "+
		"How long has it been going on, and how severe is it (mild, moderate, or severe)?")
}

// restingPhase is where a session settles between tasks
func (o *Orchestrator) restingPhase(sess *Session) Phase {
	if sess.State.Escalated {
		return PhaseEscalated
	}
	return PhaseIdle
}

// reply records the assistant turn and assembles the presentation payload
func (o *Orchestrator) reply(sess *Session, text string) Reply {
	if turn, err := models.NewTurn(models.RoleAssistant, text); err == nil {
		sess.State.AppendTurn(*turn)
	}
	return Reply{
		Text:  text,
		State: sess.Phase,
		Task:  sess.State.ActiveTask,
		Ended: sess.Phase == PhaseSessionEnded,
	}
}

var affirmativeWords = []string{"yes", "yes please", "yeah", "yep", "sure", "ok", "okay", "confirm", "go ahead", "do it", "y"}
var negativeWords = []string{"no", "nope", "no thanks", "cancel", "don't", "dont", "stop", "n"}

func isAffirmative(utterance string) bool {
	return matchesAny(utterance, affirmativeWords)
}

func isNegative(utterance string) bool {
	return matchesAny(utterance, negativeWords)
}

func matchesAny(utterance string, words []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.Trim(normalized, ".,!")
	for _, word := range words {
		if normalized == word {
			return true
		}
	}
	return false
}
