package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComposePrompts(t *testing.T) {
	patterns := []PatternInsight{
		{
			Type:        PatternSleep,
			Description: "You average 5.5 hours of sleep, which is poor",
			Confidence:  ConfidenceHigh,
			Suggestion:  "Let's optimize your evening nutrition for better sleep",
		},
		{
			Type:        PatternMoodCycle,
			Description: "Your mood tends to be happy on Monday",
			Confidence:  ConfidenceMedium,
			Suggestion:  "Let's plan some mood-boosting activities for Mondays",
		},
		{
			Type:        PatternCorrelation,
			Description: "Your mood strongly correlates with sleep quality (96% correlation)",
			Confidence:  ConfidenceHigh,
		},
	}
	predictions := []PredictiveInsight{
		{Type: PredictEnergyDip, Probability: 0.7, Description: "You might experience low energy on Tuesday", Prevention: "Plan energizing snacks and meals"},
		{Type: PredictMoodChange, Probability: 0.6, Description: "You might feel happy on Monday", Prevention: "Plan mood-supporting foods"},
	}

	got := ComposePrompts(patterns, predictions, DefaultThresholds())
	assert.Equal(t, []string{
		"I noticed you average 5.5 hours of sleep, which is poor. Let's optimize your evening nutrition for better sleep",
		"I noticed your mood strongly correlates with sleep quality (96% correlation).",
		"Based on your patterns, you might experience low energy on Tuesday. Plan energizing snacks and meals",
	}, got)
}

func TestComposePrompts_ThresholdIsStrict(t *testing.T) {
	th := DefaultThresholds()
	th.PromptMinProbability = 0.7

	got := ComposePrompts(nil, []PredictiveInsight{
		{Probability: 0.7, Description: "a", Prevention: "b"},
		{Probability: 0.71, Description: "c", Prevention: "d"},
	}, th)
	assert.Equal(t, []string{"Based on your patterns, c. d"}, got)
}

func TestComposePrompts_Empty(t *testing.T) {
	assert.Empty(t, ComposePrompts(nil, nil, DefaultThresholds()))
	assert.Empty(t, ComposePrompts([]PatternInsight{energyPattern(time.Monday)}, nil, DefaultThresholds()))
}
