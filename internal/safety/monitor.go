// ABOUTME: Safety escalation monitor: independent second pass over every completed triage turn
// ABOUTME: Checks symptom fields and retrieved text against the rule set, never the composer's opinion
package safety

import (
	"fmt"
	"strings"

	"github.com/welldesk/careline/internal/models"
)

// EscalationMessage is the response emitted when a verdict escalates.
// It always replaces any routine triage text composed the same turn.
const EscalationMessage = "EMERGENCY: your symptoms may require immediate medical attention. " +
	"Call emergency services (911 or your local equivalent) now. Do not wait. " +
	"If possible, have someone stay with you until help arrives."

// Monitor inspects triage output independently of the response composer.
// It is deliberately a second pass so the urgency decision never rests on
// a single computation.
type Monitor struct {
	rules RuleSet
}

// NewMonitor creates a Monitor with the given rule set
func NewMonitor(rules RuleSet) *Monitor {
	return &Monitor{rules: rules}
}

// Inspect evaluates one completed triage turn. The decision depends only
// on the symptom fields and retrieved chunk text; the composed response is
// accepted for completeness but never consulted for urgency wording.
func (m *Monitor) Inspect(fields models.Fields, retrieved models.RetrievalResult, response string) models.SafetyVerdict {
	symptomText := strings.ToLower(strings.Join([]string{
		fields["symptoms"], fields["duration"], fields["severity"],
	}, " "))

	for _, keyword := range m.rules.Keywords {
		if strings.Contains(symptomText, strings.ToLower(keyword)) {
			return models.SafetyVerdict{
				Decision:      models.SafetyEscalate,
				Justification: fmt.Sprintf("red-flag symptom reported: %q", keyword),
			}
		}
	}

	for _, combo := range m.rules.Combinations {
		if matched, phrases := matchCombination(symptomText, combo); matched {
			return models.SafetyVerdict{
				Decision:      models.SafetyEscalate,
				Justification: fmt.Sprintf("red-flag symptom combination reported: %s", strings.Join(phrases, " + ")),
			}
		}
	}

	chunkText := strings.ToLower(strings.Join(retrieved.Texts(), "\n"))
	for _, marker := range m.rules.ChunkMarkers {
		if strings.Contains(chunkText, strings.ToLower(marker)) {
			return models.SafetyVerdict{
				Decision:      models.SafetyEscalate,
				Justification: fmt.Sprintf("reference material directs emergency care: %q", marker),
			}
		}
	}

	return models.SafetyVerdict{
		Decision:      models.SafetyClear,
		Justification: "no red-flag symptoms or emergency guidance detected",
	}
}

// matchCombination reports whether every concept in the combination has at
// least one phrasing present in the symptom text
func matchCombination(symptomText string, combo Combination) (bool, []string) {
	var matchedPhrases []string
	for _, concept := range combo {
		conceptHit := ""
		for _, phrase := range concept {
			if strings.Contains(symptomText, strings.ToLower(phrase)) {
				conceptHit = phrase
				break
			}
		}
		if conceptHit == "" {
			return false, nil
		}
		matchedPhrases = append(matchedPhrases, conceptHit)
	}
	return len(matchedPhrases) > 0, matchedPhrases
}
