package insight

import (
	"math"
	"strings"
	"time"
)

// MealTime is a meal mentioned together with a clock time.
type MealTime struct {
	Meal string    `json:"meal"`
	Time string    `json:"time"`
	At   time.Time `json:"at"`
}

// ExtractMealTimes scans memory content for a meal keyword and a clock
// expression. Records without a clock expression are dropped.
func ExtractMealTimes(memories []MemoryRecord, lex Lexicon, loc *time.Location) []MealTime {
	var out []MealTime
	for _, m := range memories {
		meals := Match(m.Content, lex.Meals)
		if len(meals) == 0 {
			continue
		}
		clock, ok := FindClockTime(m.Content)
		if !ok {
			continue
		}
		out = append(out, MealTime{Meal: meals[0], Time: clock, At: localize(m.CreatedAt, loc)})
	}
	return out
}

// ExtractFoodPreferences returns one entry per food keyword occurrence in
// food_preference memories.
func ExtractFoodPreferences(memories []MemoryRecord, lex Lexicon) []string {
	var out []string
	for _, m := range memories {
		if m.InsightType != InsightFoodPreference {
			continue
		}
		out = append(out, Match(m.Content, lex.Foods)...)
	}
	return out
}

// EnergyReading classifies one energy_level memory. A reading may be
// neither low nor high, or both.
type EnergyReading struct {
	Low  bool      `json:"low"`
	High bool      `json:"high"`
	At   time.Time `json:"at"`
}

// ExtractEnergyReadings classifies every energy_level memory.
func ExtractEnergyReadings(memories []MemoryRecord, lex Lexicon, loc *time.Location) []EnergyReading {
	var out []EnergyReading
	for _, m := range memories {
		if m.InsightType != InsightEnergyLevel {
			continue
		}
		out = append(out, EnergyReading{
			Low:  len(Match(m.Content, lex.EnergyLow)) > 0,
			High: len(Match(m.Content, lex.EnergyHigh)) > 0,
			At:   localize(m.CreatedAt, loc),
		})
	}
	return out
}

// MoodObservation is a logged mood, normalized to lower case.
type MoodObservation struct {
	Mood string    `json:"mood"`
	At   time.Time `json:"at"`
}

// ExtractMoods returns logs with a non-empty mood.
func ExtractMoods(logs []ProgressLog, loc *time.Location) []MoodObservation {
	var out []MoodObservation
	for _, l := range logs {
		if mood := normalizeMood(l.Mood); mood != "" {
			out = append(out, MoodObservation{Mood: mood, At: localize(l.Date, loc)})
		}
	}
	return out
}

// ExtractSleepHours returns the usable sleep durations. Zero is an
// observation; negative and non-finite values are not.
func ExtractSleepHours(logs []ProgressLog) []float64 {
	var out []float64
	for _, l := range logs {
		if h, ok := sleepHours(l); ok {
			out = append(out, h)
		}
	}
	return out
}

// MoodSleepPair is a log carrying both a mood and a sleep duration.
type MoodSleepPair struct {
	Mood  string    `json:"mood"`
	Sleep float64   `json:"sleep"`
	At    time.Time `json:"at"`
}

// ExtractMoodSleepPairs returns logs that have both mood and sleep set.
func ExtractMoodSleepPairs(logs []ProgressLog, loc *time.Location) []MoodSleepPair {
	var out []MoodSleepPair
	for _, l := range logs {
		mood := normalizeMood(l.Mood)
		h, ok := sleepHours(l)
		if mood == "" || !ok {
			continue
		}
		out = append(out, MoodSleepPair{Mood: mood, Sleep: h, At: localize(l.Date, loc)})
	}
	return out
}

// WeightPoint is a logged body weight in kg.
type WeightPoint struct {
	Weight float64   `json:"weight"`
	At     time.Time `json:"at"`
}

// ExtractWeights returns logs with a positive, finite weight.
func ExtractWeights(logs []ProgressLog) []WeightPoint {
	var out []WeightPoint
	for _, l := range logs {
		if l.Weight == nil || !finite(*l.Weight) || *l.Weight <= 0 {
			continue
		}
		out = append(out, WeightPoint{Weight: *l.Weight, At: l.Date})
	}
	return out
}

func sleepHours(l ProgressLog) (float64, bool) {
	if l.SleepHours == nil {
		return 0, false
	}
	h := *l.SleepHours
	if !finite(h) || h < 0 {
		return 0, false
	}
	return h, true
}

func normalizeMood(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
