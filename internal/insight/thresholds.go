package insight

import (
	"errors"
	"fmt"
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds holds every gate, window and heuristic constant the engine
// uses. Tune sensitivity here, never inside a detector.
type Thresholds struct {
	// Eating patterns.
	MinMealTimes       int `koanf:"min_meal_times" json:"min_meal_times"`
	MinFoodPreferences int `koanf:"min_food_preferences" json:"min_food_preferences"`
	TopFoodPreferences int `koanf:"top_food_preferences" json:"top_food_preferences"`

	// Mood cycles.
	MinMoodLogs         int `koanf:"min_mood_logs" json:"min_mood_logs"`
	MinModalOccurrences int `koanf:"min_modal_occurrences" json:"min_modal_occurrences"`
	WindowHours         int `koanf:"window_hours" json:"window_hours"`

	// Energy.
	MinEnergyRecords int `koanf:"min_energy_records" json:"min_energy_records"`

	// Sleep.
	MinSleepLogs       int     `koanf:"min_sleep_logs" json:"min_sleep_logs"`
	GoodSleepHours     float64 `koanf:"good_sleep_hours" json:"good_sleep_hours"`
	ModerateSleepHours float64 `koanf:"moderate_sleep_hours" json:"moderate_sleep_hours"`

	// Correlation.
	MinCorrelationPairs    int     `koanf:"min_correlation_pairs" json:"min_correlation_pairs"`
	MinCorrelationStrength float64 `koanf:"min_correlation_strength" json:"min_correlation_strength"`
	NeutralBand            float64 `koanf:"neutral_band" json:"neutral_band"`
	MaxCorrelationExamples int     `koanf:"max_correlation_examples" json:"max_correlation_examples"`

	// Mood ordinal mapping; unmapped moods get DefaultMoodOrdinal.
	MoodOrdinals       map[string]int `koanf:"mood_ordinals" json:"mood_ordinals"`
	DefaultMoodOrdinal int            `koanf:"default_mood_ordinal" json:"default_mood_ordinal"`

	// Predictions.
	EnergyDipProbability  float64 `koanf:"energy_dip_probability" json:"energy_dip_probability"`
	MoodChangeProbability float64 `koanf:"mood_change_probability" json:"mood_change_probability"`

	// Prompts: strictly greater than this probability is surfaced.
	PromptMinProbability float64 `koanf:"prompt_min_probability" json:"prompt_min_probability"`

	// Weight trend.
	WeightTrend          bool    `koanf:"weight_trend" json:"weight_trend"`
	MinWeightLogs        int     `koanf:"min_weight_logs" json:"min_weight_logs"`
	MinWeeklyWeightDelta float64 `koanf:"min_weekly_weight_delta" json:"min_weekly_weight_delta"`
}

// DefaultMoodOrdinals returns the built-in mood scale.
func DefaultMoodOrdinals() map[string]int {
	return map[string]int{
		"sad":       1,
		"tired":     2,
		"stressed":  2,
		"neutral":   3,
		"happy":     4,
		"energetic": 5,
		"motivated": 5,
	}
}

// KnownMoods is the vocabulary offered by the mood tracker. Moods outside
// DefaultMoodOrdinals map to the neutral ordinal.
var KnownMoods = []string{"energetic", "happy", "tired", "stressed", "focused", "relaxed", "motivated", "sad"}

// DefaultThresholds returns the stock engine sensitivity.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMealTimes:       3,
		MinFoodPreferences: 5,
		TopFoodPreferences: 3,

		MinMoodLogs:         7,
		MinModalOccurrences: 2,
		WindowHours:         4,

		MinEnergyRecords: 5,

		MinSleepLogs:       7,
		GoodSleepHours:     7,
		ModerateSleepHours: 6,

		MinCorrelationPairs:    5,
		MinCorrelationStrength: 0.5,
		NeutralBand:            0.1,
		MaxCorrelationExamples: 3,

		MoodOrdinals:       DefaultMoodOrdinals(),
		DefaultMoodOrdinal: 3,

		EnergyDipProbability:  0.7,
		MoodChangeProbability: 0.6,

		PromptMinProbability: 0.6,

		WeightTrend:          false,
		MinWeightLogs:        5,
		MinWeeklyWeightDelta: 0.1,
	}
}

// Validate checks the table for values no detector can work with.
func (t Thresholds) Validate() error {
	if t.WindowHours < 1 || t.WindowHours > 24 || 24%t.WindowHours != 0 {
		return fmt.Errorf("%w: window_hours must divide 24, got %d", ErrInvalidThresholds, t.WindowHours)
	}
	if t.ModerateSleepHours > t.GoodSleepHours {
		return fmt.Errorf("%w: moderate_sleep_hours (%.1f) above good_sleep_hours (%.1f)",
			ErrInvalidThresholds, t.ModerateSleepHours, t.GoodSleepHours)
	}
	if t.MinCorrelationPairs < 2 {
		return fmt.Errorf("%w: min_correlation_pairs must be >= 2", ErrInvalidThresholds)
	}
	for _, g := range []struct {
		name  string
		value int
	}{
		{"min_meal_times", t.MinMealTimes},
		{"min_food_preferences", t.MinFoodPreferences},
		{"top_food_preferences", t.TopFoodPreferences},
		{"min_mood_logs", t.MinMoodLogs},
		{"min_modal_occurrences", t.MinModalOccurrences},
		{"min_energy_records", t.MinEnergyRecords},
		{"min_sleep_logs", t.MinSleepLogs},
		{"min_weight_logs", t.MinWeightLogs},
	} {
		if g.value < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidThresholds, g.name, g.value)
		}
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"min_correlation_strength", t.MinCorrelationStrength},
		{"neutral_band", t.NeutralBand},
		{"energy_dip_probability", t.EnergyDipProbability},
		{"mood_change_probability", t.MoodChangeProbability},
		{"prompt_min_probability", t.PromptMinProbability},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%w: %s must be within [0,1], got %f", ErrInvalidThresholds, p.name, p.value)
		}
	}
	return nil
}
