// ABOUTME: Escalation rule set: red-flag keywords, combinations, and chunk markers
// ABOUTME: Injectable via YAML file; ships with conservative defaults
package safety

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Combination is a red-flag conjunction. The outer list holds required
// concepts; the inner list holds accepted phrasings for one concept.
// All concepts must match (any phrasing each) for the combination to fire.
type Combination [][]string

// RuleSet drives the escalation decision. It is configuration, not
// architecture: deployments replace the defaults with a clinically
// reviewed file via CARELINE_RULES_FILE.
type RuleSet struct {
	// Keywords escalate on their own when present in symptom fields.
	Keywords []string `yaml:"keywords"`
	// Combinations escalate when every concept in one entry matches.
	Combinations []Combination `yaml:"combinations"`
	// ChunkMarkers escalate when present in retrieved reference text.
	ChunkMarkers []string `yaml:"chunk_markers"`
}

// DefaultRuleSet returns the built-in starter rules. These are a
// conservative placeholder, not a clinically validated list.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Keywords: []string{
			"unconscious",
			"not breathing",
			"severe bleeding",
			"coughing blood",
			"stroke",
			"seizure",
			"anaphylaxis",
			"overdose",
			"suicidal",
		},
		Combinations: []Combination{
			{
				{"chest pain", "chest hurts", "chest tightness", "pain in my chest"},
				{"shortness of breath", "short of breath", "can't breathe", "cant breathe", "cannot breathe", "difficulty breathing", "trouble breathing"},
			},
			{
				{"numbness", "weakness"},
				{"one side", "face drooping", "slurred speech"},
			},
			{
				{"severe headache", "worst headache"},
				{"vision loss", "blurred vision", "confusion"},
			},
		},
		ChunkMarkers: []string{
			"seek emergency care",
			"call 911",
			"call emergency services",
			"go to the emergency",
			"emergency department immediately",
		},
	}
}

// LoadRules reads a rule set from a YAML file. An empty path returns
// the defaults.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules RuleSet
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(rules.Keywords) == 0 && len(rules.Combinations) == 0 && len(rules.ChunkMarkers) == 0 {
		return RuleSet{}, fmt.Errorf("rules file %s defines no rules", path)
	}
	return rules, nil
}
