package insight

import (
	"fmt"
	"math"
	"strings"
)

// DetectWeightTrend fits a least-squares line through logged weights and
// reports the weekly change. It is disabled unless th.WeightTrend is set.
func DetectWeightTrend(points []WeightPoint, profile UserProfile, th Thresholds) []PatternInsight {
	if !th.WeightTrend || len(points) == 0 || len(points) < th.MinWeightLogs {
		return nil
	}
	first := points[0].At
	days := make([]float64, len(points))
	weights := make([]float64, len(points))
	for i, p := range points {
		days[i] = p.At.Sub(first).Hours() / 24
		weights[i] = p.Weight
	}
	if constant(days) {
		return nil
	}

	mx, my := mean(days), mean(weights)
	var sxy, sxx float64
	for i := range days {
		sxy += (days[i] - mx) * (weights[i] - my)
		sxx += (days[i] - mx) * (days[i] - mx)
	}
	perWeek := sxy / sxx * 7
	fit := math.Abs(Pearson(days, weights))

	conf := ConfidenceLow
	switch n := len(points); {
	case n >= 14 && fit > 0.7:
		conf = ConfidenceHigh
	case n >= 7:
		conf = ConfidenceMedium
	}

	word := "steady"
	switch {
	case perWeek <= -th.MinWeeklyWeightDelta:
		word = "down"
	case perWeek >= th.MinWeeklyWeightDelta:
		word = "up"
	}

	var desc string
	if word == "steady" {
		desc = fmt.Sprintf("Your weight has held steady around %.1f kg", my)
	} else {
		desc = fmt.Sprintf("Your weight is trending %s about %.1f kg per week", word, math.Abs(perWeek))
	}

	return []PatternInsight{{
		Type:        PatternTrend,
		Title:       "Weight Trend",
		Description: desc,
		Confidence:  conf,
		Data: TrendData{
			Variable:      "weight",
			SlopePerWeek:  perWeek,
			Start:         points[0].Weight,
			End:           points[len(points)-1].Weight,
			Samples:       len(points),
			Fit:           fit,
			DirectionWord: word,
		},
		Actionable: word != "steady" || profile.Goal != "",
		Suggestion: trendSuggestion(word, profile.Goal),
	}}
}

func trendSuggestion(word, goal string) string {
	g := strings.ToLower(goal)
	want := ""
	switch {
	case strings.Contains(g, "lose"), strings.Contains(g, "loss"), strings.Contains(g, "cut"):
		want = "down"
	case strings.Contains(g, "gain"), strings.Contains(g, "bulk"), strings.Contains(g, "muscle"):
		want = "up"
	case strings.Contains(g, "maintain"):
		want = "steady"
	}
	switch {
	case want == "":
		return "Let's keep logging your weight so I can track how your meals affect it"
	case want == word:
		return fmt.Sprintf("You're on track for your goal to %s. Let's keep this pace", goal)
	default:
		return fmt.Sprintf("Your weight is not yet moving toward your goal to %s. Let's review your meal plan", goal)
	}
}
