package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightSeries(n int, start, perDay float64) []WeightPoint {
	points := make([]WeightPoint, n)
	for i := range points {
		points[i] = WeightPoint{Weight: start + perDay*float64(i), At: jan(1+i, 7)}
	}
	return points
}

func trendThresholds() Thresholds {
	th := DefaultThresholds()
	th.WeightTrend = true
	return th
}

func TestDetectWeightTrend_Disabled(t *testing.T) {
	assert.Empty(t, DetectWeightTrend(weightSeries(20, 80, -0.1), UserProfile{}, DefaultThresholds()))
}

func TestDetectWeightTrend_NoPoints(t *testing.T) {
	th := trendThresholds()
	th.MinWeightLogs = 0
	assert.Empty(t, DetectWeightTrend(nil, UserProfile{}, th))
}

func TestDetectWeightTrend_Losing(t *testing.T) {
	got := DetectWeightTrend(weightSeries(14, 80, -0.1), UserProfile{Goal: "lose weight"}, trendThresholds())
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, PatternTrend, p.Type)
	assert.Equal(t, "Weight Trend", p.Title)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.Equal(t, "Your weight is trending down about 0.7 kg per week", p.Description)
	assert.Equal(t, "You're on track for your goal to lose weight. Let's keep this pace", p.Suggestion)

	data, ok := p.Data.(TrendData)
	require.True(t, ok)
	assert.InDelta(t, -0.7, data.SlopePerWeek, 1e-9)
	assert.InDelta(t, 1.0, data.Fit, 1e-9)
	assert.Equal(t, 14, data.Samples)
	assert.Equal(t, 80.0, data.Start)
	assert.InDelta(t, 78.7, data.End, 1e-9)
	assert.Equal(t, "down", data.DirectionWord)
}

func TestDetectWeightTrend_AgainstGoal(t *testing.T) {
	got := DetectWeightTrend(weightSeries(8, 70, 0.04), UserProfile{Goal: "lose weight"}, trendThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, ConfidenceMedium, got[0].Confidence)
	assert.Equal(t, "Your weight is trending up about 0.3 kg per week", got[0].Description)
	assert.Equal(t, "Your weight is not yet moving toward your goal to lose weight. Let's review your meal plan", got[0].Suggestion)
}

func TestDetectWeightTrend_Steady(t *testing.T) {
	got := DetectWeightTrend(weightSeries(7, 80, 0), UserProfile{}, trendThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, ConfidenceMedium, got[0].Confidence)
	assert.Equal(t, "Your weight has held steady around 80.0 kg", got[0].Description)
	assert.False(t, got[0].Actionable)
}

func TestDetectWeightTrend_FewSamplesAreLowConfidence(t *testing.T) {
	got := DetectWeightTrend(weightSeries(5, 80, -0.1), UserProfile{}, trendThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, ConfidenceLow, got[0].Confidence)

	assert.Empty(t, DetectWeightTrend(weightSeries(4, 80, -0.1), UserProfile{}, trendThresholds()))
}
