package insight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPearson(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}), 1e-12)
	})

	t.Run("perfect negative", func(t *testing.T) {
		assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}), 1e-12)
	})

	t.Run("mood and sleep", func(t *testing.T) {
		r := Pearson([]float64{1, 2, 2, 4, 5}, []float64{5, 6, 7, 8, 9})
		assert.InDelta(t, 10/math.Sqrt(108), r, 1e-12)
		assert.InDelta(t, 0.971, r, 0.01)
	})

	t.Run("constant series is exactly zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Pearson([]float64{3, 3, 3}, []float64{1, 2, 3}))
		assert.Equal(t, 0.0, Pearson([]float64{1, 2, 3}, []float64{7, 7, 7}))
	})

	t.Run("length mismatch and empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1, 2, 3}))
		assert.Equal(t, 0.0, Pearson(nil, nil))
	})
}

func drawSeries(rt *rapid.T, n int, label string) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(rapid.IntRange(-100, 100).Draw(rt, label))
	}
	return xs
}

func TestPearson_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(rt, "n")
		x := drawSeries(rt, n, "x")
		y := drawSeries(rt, n, "y")

		r := Pearson(x, y)
		if r < -1 || r > 1 || math.IsNaN(r) {
			rt.Fatalf("pearson out of range: %v", r)
		}
		if r != Pearson(y, x) {
			rt.Fatalf("pearson not symmetric: %v vs %v", r, Pearson(y, x))
		}

		scale := rapid.Float64Range(0.5, 50).Draw(rt, "scale")
		shift := rapid.Float64Range(-500, 500).Draw(rt, "shift")
		moved := make([]float64, n)
		for i, v := range x {
			moved[i] = v*scale + shift
		}
		if got := Pearson(moved, y); math.Abs(got-r) > 1e-9 {
			rt.Fatalf("pearson not scale invariant: %v vs %v", got, r)
		}
	})
}

func TestPearson_ConstantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		c := rapid.Float64Range(-1e6, 1e6).Draw(rt, "c")
		x := make([]float64, n)
		for i := range x {
			x[i] = c
		}
		y := drawSeries(rt, n, "y")
		if r := Pearson(x, y); r != 0 {
			rt.Fatalf("constant series gave %v", r)
		}
	})
}

func TestMoodToOrdinal(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, 1, MoodToOrdinal("sad", th))
	assert.Equal(t, 2, MoodToOrdinal("tired", th))
	assert.Equal(t, 2, MoodToOrdinal("stressed", th))
	assert.Equal(t, 3, MoodToOrdinal("neutral", th))
	assert.Equal(t, 4, MoodToOrdinal(" Happy", th))
	assert.Equal(t, 5, MoodToOrdinal("energetic", th))
	assert.Equal(t, 5, MoodToOrdinal("MOTIVATED", th))
	assert.Equal(t, 3, MoodToOrdinal("focused", th))
	assert.Equal(t, 3, MoodToOrdinal("", th))
}

func TestClassifyCorrelation(t *testing.T) {
	vars := [2]string{"mood", "sleep"}

	c := ClassifyCorrelation(vars, 0.82, 0.1)
	assert.Equal(t, DirectionPositive, c.Direction)
	assert.InDelta(t, 0.82, c.Strength, 1e-12)
	assert.Equal(t, "Mood and sleep show a strong positive relationship", c.Description)

	c = ClassifyCorrelation(vars, -0.6, 0.1)
	assert.Equal(t, DirectionNegative, c.Direction)
	assert.InDelta(t, 0.6, c.Strength, 1e-12)
	assert.Equal(t, "Mood and sleep show a moderate negative relationship", c.Description)

	c = ClassifyCorrelation(vars, -0.05, 0.1)
	assert.Equal(t, DirectionNeutral, c.Direction)
	assert.Equal(t, "No meaningful relationship between mood and sleep", c.Description)
}

// scenarioSleepMood is five nights where more sleep goes with a better mood.
func scenarioSleepMood() []ProgressLog {
	moods := []string{"sad", "stressed", "stressed", "happy", "energetic"}
	logs := make([]ProgressLog, 0, len(moods))
	for i, m := range moods {
		logs = append(logs, ProgressLog{UserID: "u1", Date: jan(1+i, 7), Mood: m, SleepHours: ptr(float64(5 + i))})
	}
	return logs
}

func TestDetectMoodSleepCorrelation(t *testing.T) {
	pairs := ExtractMoodSleepPairs(scenarioSleepMood(), nil)

	got := DetectMoodSleepCorrelation(pairs, DefaultThresholds())
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, PatternCorrelation, p.Type)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.Equal(t, "Sleep-Mood Connection", p.Title)
	assert.Equal(t, "Your mood strongly correlates with sleep quality (96% correlation)", p.Description)
	assert.Equal(t, "Prioritizing sleep will significantly improve your mood and energy", p.Suggestion)

	corr, ok := p.Data.(CorrelationInsight)
	require.True(t, ok)
	assert.Equal(t, [2]string{"mood", "sleep"}, corr.Variables)
	assert.InDelta(t, 0.971, corr.Coefficient, 0.01)
	assert.InDelta(t, corr.Coefficient, corr.Strength, 1e-12)
	assert.Equal(t, DirectionPositive, corr.Direction)
	assert.Equal(t, []string{
		"Mon Jan 1: 5.0h sleep, felt sad",
		"Tue Jan 2: 6.0h sleep, felt stressed",
		"Wed Jan 3: 7.0h sleep, felt stressed",
	}, corr.Examples)
}

func TestDetectMoodSleepCorrelation_Negative(t *testing.T) {
	logs := scenarioSleepMood()
	for i := range logs {
		logs[i].SleepHours = ptr(float64(9 - i))
	}

	got := DetectMoodSleepCorrelation(ExtractMoodSleepPairs(logs, nil), DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, "Your mood strongly correlates with sleep quality (-96% correlation)", got[0].Description)
	assert.Equal(t, DirectionNegative, got[0].Data.(CorrelationInsight).Direction)
}

func TestDetectMoodSleepCorrelation_Silent(t *testing.T) {
	t.Run("four pairs", func(t *testing.T) {
		pairs := ExtractMoodSleepPairs(scenarioSleepMood()[:4], nil)
		assert.Empty(t, DetectMoodSleepCorrelation(pairs, DefaultThresholds()))
	})

	t.Run("weak relationship", func(t *testing.T) {
		pairs := []MoodSleepPair{
			{Mood: "happy", Sleep: 5},
			{Mood: "sad", Sleep: 6},
			{Mood: "happy", Sleep: 7},
			{Mood: "sad", Sleep: 8},
			{Mood: "neutral", Sleep: 6.5},
		}
		assert.Empty(t, DetectMoodSleepCorrelation(pairs, DefaultThresholds()))
	})

	t.Run("constant mood", func(t *testing.T) {
		var pairs []MoodSleepPair
		for i := 0; i < 6; i++ {
			pairs = append(pairs, MoodSleepPair{Mood: "happy", Sleep: float64(5 + i)})
		}
		assert.Empty(t, DetectMoodSleepCorrelation(pairs, DefaultThresholds()))
	})
}
