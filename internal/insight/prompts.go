package insight

import (
	"fmt"
	"strings"
)

// ComposePrompts renders high-confidence patterns and likely predictions as
// advisory sentences, in input order.
func ComposePrompts(patterns []PatternInsight, predictions []PredictiveInsight, th Thresholds) []string {
	var out []string
	for _, p := range patterns {
		if p.Confidence != ConfidenceHigh {
			continue
		}
		out = append(out, sentence("I noticed "+strings.ToLower(p.Description), p.Suggestion))
	}
	for _, p := range predictions {
		if p.Probability <= th.PromptMinProbability {
			continue
		}
		out = append(out, sentence("Based on your patterns, "+lowerFirst(p.Description), p.Prevention))
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func sentence(lead, follow string) string {
	if follow == "" {
		return lead + "."
	}
	return fmt.Sprintf("%s. %s", lead, follow)
}
