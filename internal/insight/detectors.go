package insight

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DetectEatingPatterns reports a consistent meal schedule and the user's
// favourite foods.
func DetectEatingPatterns(meals []MealTime, foods []string, profile UserProfile, th Thresholds) []PatternInsight {
	var out []PatternInsight

	if len(meals) >= th.MinMealTimes {
		byMeal := func(name string) []string {
			var times []string
			for _, m := range meals {
				if m.Meal == name {
					times = append(times, m.Time)
				}
			}
			return times
		}
		breakfast, okB := Mode(byMeal("breakfast"))
		lunch, okL := Mode(byMeal("lunch"))
		dinner, okD := Mode(byMeal("dinner"))
		if okB && okL && okD {
			out = append(out, PatternInsight{
				Type:        PatternEating,
				Title:       "Consistent Meal Timing",
				Description: fmt.Sprintf("You typically eat breakfast at %s, lunch at %s, and dinner at %s", breakfast, lunch, dinner),
				Confidence:  ConfidenceHigh,
				Data: MealScheduleData{
					Breakfast:    breakfast,
					Lunch:        lunch,
					Dinner:       dinner,
					Observations: len(meals),
				},
				Actionable: true,
				Suggestion: "Maintaining consistent meal times supports your circadian rhythm and metabolism",
			})
		}
	}

	if len(foods) >= th.MinFoodPreferences {
		top := TopN(foods, th.TopFoodPreferences)
		suggestion := "I can incorporate more of these foods into your meal plans"
		if diet := strings.TrimSpace(profile.DietType); diet != "" {
			suggestion = fmt.Sprintf("I can incorporate more of these foods into your %s meal plans", diet)
		}
		out = append(out, PatternInsight{
			Type:        PatternEating,
			Title:       "Food Preferences",
			Description: "You consistently enjoy " + strings.Join(top, ", "),
			Confidence:  ConfidenceMedium,
			Data:        FoodPreferenceData{Preferences: top, Observations: len(foods)},
			Actionable:  true,
			Suggestion:  suggestion,
		})
	}

	return out
}

// DetectMoodCycles looks for a recurring mood per weekday and per time of
// day window.
func DetectMoodCycles(moods []MoodObservation, th Thresholds) []PatternInsight {
	if len(moods) < th.MinMoodLogs {
		return nil
	}
	at := func(m MoodObservation) time.Time { return m.At }

	var out []PatternInsight

	days := modalMoods(GroupByDayOfWeek(moods, at), th.MinModalOccurrences, func(k int) string {
		return DayName(time.Weekday(k))
	})
	if len(days) > 0 {
		top := days[0]
		out = append(out, PatternInsight{
			Type:        PatternMoodCycle,
			Title:       "Weekly Mood Pattern",
			Description: fmt.Sprintf("Your mood tends to be %s on %s", top.Mood, top.Label),
			Confidence:  ConfidenceMedium,
			Data:        MoodCycleData{Dimension: DimensionDayOfWeek, Patterns: days},
			Actionable:  true,
			Suggestion:  fmt.Sprintf("Let's plan some mood-boosting activities for %ss", top.Label),
		})
	}

	windows := modalMoods(GroupByTimeWindow(moods, at, th.WindowHours), th.MinModalOccurrences, WindowLabel)
	if len(windows) > 0 {
		top := windows[0]
		out = append(out, PatternInsight{
			Type:        PatternMoodCycle,
			Title:       "Daily Mood Rhythm",
			Description: fmt.Sprintf("You typically feel %s around %s", top.Mood, top.Label),
			Confidence:  ConfidenceMedium,
			Data:        MoodCycleData{Dimension: DimensionTimeOfDay, Patterns: windows},
			Actionable:  true,
			Suggestion:  fmt.Sprintf("Let's optimize your nutrition around %s to support your mood", top.Label),
		})
	}

	return out
}

// modalMoods keeps the buckets whose modal mood occurred at least minCount
// times, strongest first. Equal counts stay in bucket key order.
func modalMoods(buckets []Bucket[MoodObservation], minCount int, label func(int) string) []MoodBucket {
	var out []MoodBucket
	for _, b := range buckets {
		mood, count, ok := CountBy(b.Items, func(m MoodObservation) string { return m.Mood }).Mode()
		if !ok || count < minCount {
			continue
		}
		out = append(out, MoodBucket{Key: b.Key, Label: label(b.Key), Mood: mood, Count: count})
	}
	slices.SortStableFunc(out, func(a, b MoodBucket) int { return b.Count - a.Count })
	return out
}

// DetectEnergyPatterns names the weekday low energy is reported on most.
func DetectEnergyPatterns(readings []EnergyReading, th Thresholds) []PatternInsight {
	if len(readings) < th.MinEnergyRecords {
		return nil
	}
	var low []EnergyReading
	high := 0
	for _, r := range readings {
		if r.Low {
			low = append(low, r)
		}
		if r.High {
			high++
		}
	}
	if len(low) == 0 {
		return nil
	}

	day, dayCount, _ := CountBy(low, func(r EnergyReading) time.Weekday { return r.At.Weekday() }).Mode()
	name := DayName(day)
	return []PatternInsight{{
		Type:        PatternEnergy,
		Title:       "Energy Dip Pattern",
		Description: fmt.Sprintf("You often feel low energy on %ss", name),
		Confidence:  ConfidenceMedium,
		Data: EnergyDipData{
			Day:       day,
			DayName:   name,
			Count:     len(low),
			DayCount:  dayCount,
			HighCount: high,
		},
		Actionable: true,
		Suggestion: fmt.Sprintf("Let's plan energizing meals and snacks for %ss", name),
	}}
}

// DetectSleepPatterns classifies the average sleep duration.
func DetectSleepPatterns(hours []float64, th Thresholds) []PatternInsight {
	if len(hours) < th.MinSleepLogs {
		return nil
	}
	avg := mean(hours)
	quality := ClassifySleep(avg, th)
	return []PatternInsight{{
		Type:        PatternSleep,
		Title:       "Sleep Quality Pattern",
		Description: fmt.Sprintf("You average %.1f hours of sleep, which is %s", avg, quality),
		Confidence:  ConfidenceHigh,
		Data:        SleepData{Average: avg, Quality: quality, Samples: len(hours)},
		Actionable:  true,
		Suggestion:  sleepSuggestions[quality],
	}}
}

var sleepSuggestions = map[SleepQuality]string{
	SleepGood:     "Great sleep habits! Let's maintain this pattern",
	SleepModerate: "You're close to a full night. Let's adjust evening meals to add a little more rest",
	SleepPoor:     "Let's optimize your evening nutrition for better sleep",
}

// ClassifySleep maps an average nightly duration to a quality tier.
func ClassifySleep(avg float64, th Thresholds) SleepQuality {
	switch {
	case avg >= th.GoodSleepHours:
		return SleepGood
	case avg >= th.ModerateSleepHours:
		return SleepModerate
	default:
		return SleepPoor
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
