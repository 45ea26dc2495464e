package insight

import (
	"fmt"
	"math"
	"strings"
)

// Pearson returns the product-moment correlation of x and y. It returns 0
// when the lengths differ, are zero, or either series has no variance.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) || constant(x) || constant(y) {
		return 0
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	den := math.Sqrt(sxx) * math.Sqrt(syy)
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	r := sxy / den
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

// MoodToOrdinal maps a mood onto the 1..5 scale of th. Unmapped moods get
// the default ordinal.
func MoodToOrdinal(mood string, th Thresholds) int {
	if v, ok := th.MoodOrdinals[normalizeMood(mood)]; ok {
		return v
	}
	return th.DefaultMoodOrdinal
}

// ClassifyCorrelation describes coefficient r between two named variables.
// Coefficients within neutralBand of zero have no direction.
func ClassifyCorrelation(variables [2]string, r, neutralBand float64) CorrelationInsight {
	strength := math.Abs(r)
	dir := DirectionNeutral
	switch {
	case strength < neutralBand:
	case r > 0:
		dir = DirectionPositive
	case r < 0:
		dir = DirectionNegative
	}

	var desc string
	if dir == DirectionNeutral {
		desc = fmt.Sprintf("No meaningful relationship between %s and %s", variables[0], variables[1])
	} else {
		desc = fmt.Sprintf("%s and %s show a %s %s relationship",
			capitalize(variables[0]), variables[1], strengthWord(strength), dir)
	}
	return CorrelationInsight{
		Variables:   variables,
		Coefficient: r,
		Strength:    strength,
		Direction:   dir,
		Description: desc,
	}
}

func strengthWord(s float64) string {
	switch {
	case s >= 0.7:
		return "strong"
	case s >= 0.5:
		return "moderate"
	case s >= 0.3:
		return "weak"
	default:
		return "slight"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DetectMoodSleepCorrelation reports a strong link between logged mood and
// sleep duration.
func DetectMoodSleepCorrelation(pairs []MoodSleepPair, th Thresholds) []PatternInsight {
	if len(pairs) < th.MinCorrelationPairs {
		return nil
	}
	moods := make([]float64, len(pairs))
	sleep := make([]float64, len(pairs))
	for i, p := range pairs {
		moods[i] = float64(MoodToOrdinal(p.Mood, th))
		sleep[i] = p.Sleep
	}
	r := Pearson(moods, sleep)
	if math.Abs(r) <= th.MinCorrelationStrength {
		return nil
	}

	corr := ClassifyCorrelation([2]string{"mood", "sleep"}, r, th.NeutralBand)
	for _, p := range pairs {
		if len(corr.Examples) >= th.MaxCorrelationExamples {
			break
		}
		corr.Examples = append(corr.Examples,
			fmt.Sprintf("%s: %.1fh sleep, felt %s", p.At.Format("Mon Jan 2"), p.Sleep, p.Mood))
	}

	return []PatternInsight{{
		Type:        PatternCorrelation,
		Title:       "Sleep-Mood Connection",
		Description: fmt.Sprintf("Your mood strongly correlates with sleep quality (%.0f%% correlation)", r*100),
		Confidence:  ConfidenceHigh,
		Data:        corr,
		Actionable:  true,
		Suggestion:  "Prioritizing sleep will significantly improve your mood and energy",
	}}
}
