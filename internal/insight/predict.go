package insight

import "fmt"

// Predict projects detected patterns forward. At most one prediction is made
// per pattern type, from the first pattern of that type; patterns with no
// forecast rule are ignored.
func Predict(patterns []PatternInsight, th Thresholds) []PredictiveInsight {
	var out []PredictiveInsight

	if p, ok := firstOf(patterns, PatternEnergy); ok {
		if d, ok := p.Data.(EnergyDipData); ok {
			out = append(out, PredictiveInsight{
				Type:        PredictEnergyDip,
				Probability: th.EnergyDipProbability,
				Timeframe:   "next few days",
				Description: fmt.Sprintf("You might experience low energy on %s", d.DayName),
				Prevention:  "Plan energizing snacks and meals",
				Preparation: "Consider meal prepping for that day",
			})
		}
	}

	if p, ok := firstOf(patterns, PatternMoodCycle); ok {
		if d, ok := p.Data.(MoodCycleData); ok && len(d.Patterns) > 0 {
			top := d.Patterns[0]
			when := "around " + top.Label
			if d.Dimension == DimensionDayOfWeek {
				when = "on " + top.Label
			}
			out = append(out, PredictiveInsight{
				Type:        PredictMoodChange,
				Probability: th.MoodChangeProbability,
				Timeframe:   "this week",
				Description: fmt.Sprintf("You might feel %s %s", top.Mood, when),
				Prevention:  "Plan mood-supporting foods",
				Preparation: "Have healthy snacks ready",
			})
		}
	}

	return out
}

func firstOf(patterns []PatternInsight, t PatternType) (PatternInsight, bool) {
	for _, p := range patterns {
		if p.Type == t {
			return p, true
		}
	}
	return PatternInsight{}, false
}
