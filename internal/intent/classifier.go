// ABOUTME: Intent classifier with sticky continuation of in-progress tasks
// ABOUTME: Fails closed to Clarify rather than guessing a task
package intent

import (
	"context"
	"log"
	"strings"

	"github.com/welldesk/careline/internal/models"
)

// LanguageModel is the upstream language-understanding call
type LanguageModel interface {
	ClassifyIntent(ctx context.Context, utterance string) (string, error)
}

// endPhrases terminate the session from any resting state
var endPhrases = []string{
	"bye", "goodbye", "that's all", "thats all", "quit", "exit",
	"end session", "i'm done", "im done", "no more questions",
}

// switchMarkers signal the patient is abandoning the in-progress task
var switchMarkers = []string{
	"instead", "actually", "forget that", "forget it", "never mind",
	"nevermind", "different question", "something else",
}

// Classifier maps (utterance, state snapshot) to an Intent.
// Pure apart from the language-model call.
type Classifier struct {
	lm LanguageModel
}

// NewClassifier creates a new Classifier
func NewClassifier(lm LanguageModel) *Classifier {
	return &Classifier{lm: lm}
}

// Classify returns the intent for the latest utterance. With a task in
// progress the result is biased toward continuing it: only an explicit
// switch marker or end phrase overrides the sticky continuation.
func (c *Classifier) Classify(ctx context.Context, utterance string, state *models.ConversationState) models.Intent {
	if isEndPhrase(utterance) {
		return models.IntentEndSession
	}

	if state != nil && state.ActiveTask != models.TaskNone {
		if !hasSwitchMarker(utterance) {
			return continuationIntent(state.ActiveTask)
		}
		// Explicit switch signal: reclassify, but fall back to the
		// in-progress task unless the model names a different one.
		fresh := c.classifyFresh(ctx, utterance)
		if task := fresh.Task(); task != models.TaskNone && task != state.ActiveTask {
			return fresh
		}
		if fresh == models.IntentEndSession {
			return fresh
		}
		return continuationIntent(state.ActiveTask)
	}

	return c.classifyFresh(ctx, utterance)
}

// classifyFresh asks the language model, failing closed to Clarify
func (c *Classifier) classifyFresh(ctx context.Context, utterance string) models.Intent {
	word, err := c.lm.ClassifyIntent(ctx, utterance)
	if err != nil {
		log.Printf("[Classifier] upstream classification failed: %v", err)
		return models.IntentClarify
	}
	return models.ParseIntent(word)
}

// continuationIntent maps an in-progress task to its continuation intent
func continuationIntent(task models.TaskType) models.Intent {
	switch task {
	case models.TaskScheduling:
		return models.IntentSchedule
	case models.TaskRecordLookup:
		return models.IntentLookupRecords
	case models.TaskTriage:
		return models.IntentTriage
	case models.TaskHomeCare:
		return models.IntentHomeCare
	default:
		return models.IntentClarify
	}
}

func isEndPhrase(utterance string) bool {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.Trim(normalized, ".!")
	for _, phrase := range endPhrases {
		if normalized == phrase {
			return true
		}
	}
	return false
}

func hasSwitchMarker(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, marker := range switchMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
