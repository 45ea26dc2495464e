package insight

import (
	"time"
)

// InsightType is the category a memory record was filed under by the
// collaborator that wrote it.
type InsightType string

const (
	InsightGoalProgress    InsightType = "goal_progress"
	InsightMoodPattern     InsightType = "mood_pattern"
	InsightPreference      InsightType = "preference"
	InsightLifestyleChange InsightType = "lifestyle_change"
	InsightAchievement     InsightType = "achievement"
	InsightEnergyLevel     InsightType = "energy_level"
	InsightFoodPreference  InsightType = "food_preference"
)

// MemoryRecord is a free-text observation about a user.
type MemoryRecord struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	InsightType InsightType    `json:"insight_type"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ProgressLog is one dated check-in. Nil fields were not logged and are
// never read as zero.
type ProgressLog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Date        time.Time `json:"date"`
	Weight      *float64  `json:"weight,omitempty"`
	Calories    *int      `json:"calories,omitempty"`
	Mood        string    `json:"mood,omitempty"`
	SleepHours  *float64  `json:"sleep_hours,omitempty"`
	Steps       *int      `json:"steps,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// UserProfile is static context. It only shapes text, never numbers.
type UserProfile struct {
	UserID        string `json:"user_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Goal          string `json:"goal,omitempty"`
	DietType      string `json:"diet_type,omitempty"`
	ActivityLevel int    `json:"activity_level,omitempty"`
}

// Input is everything the engine needs for one user.
type Input struct {
	Memories     []MemoryRecord
	ProgressLogs []ProgressLog
	Profile      UserProfile
}

// PatternType classifies a detected pattern.
type PatternType string

const (
	PatternEating      PatternType = "eating_pattern"
	PatternMoodCycle   PatternType = "mood_cycle"
	PatternEnergy      PatternType = "energy_pattern"
	PatternSleep       PatternType = "sleep_pattern"
	PatternCorrelation PatternType = "correlation"
	PatternTrend       PatternType = "trend"
)

// Confidence is a qualitative strength label derived from sample size and
// threshold checks.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// PatternInsight is a single detected pattern.
type PatternInsight struct {
	// Type of pattern.
	Type PatternType `json:"type"`
	// Title is a short heading.
	Title string `json:"title"`
	// Description states the pattern in one sentence.
	Description string `json:"description"`
	// Confidence tier.
	Confidence Confidence `json:"confidence"`
	// Data is the type-specific payload; see the *Data types.
	Data PatternData `json:"data"`
	// Actionable reports whether Suggestion is worth acting on.
	Actionable bool `json:"actionable"`
	// Suggestion is an optional follow-up.
	Suggestion string `json:"suggestion,omitempty"`
}

// PatternData is implemented by every pattern payload.
type PatternData interface {
	patternType() PatternType
}

// MealScheduleData is the payload of the meal timing insight.
type MealScheduleData struct {
	Breakfast    string `json:"breakfast"`
	Lunch        string `json:"lunch"`
	Dinner       string `json:"dinner"`
	Observations int    `json:"observations"`
}

// FoodPreferenceData is the payload of the food preference insight.
type FoodPreferenceData struct {
	Preferences  []string `json:"preferences"`
	Observations int      `json:"observations"`
}

// MoodDimension names the axis a mood cycle was found on.
type MoodDimension string

const (
	DimensionDayOfWeek MoodDimension = "day_of_week"
	DimensionTimeOfDay MoodDimension = "time_of_day"
)

// MoodBucket is the modal mood of one day or time window.
type MoodBucket struct {
	// Key is the weekday (0=Sunday) or the window start hour.
	Key int `json:"key"`
	// Label is the weekday name or "H:00".
	Label string `json:"label"`
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

// MoodCycleData is the payload of both mood cycle insights.
type MoodCycleData struct {
	Dimension MoodDimension `json:"dimension"`
	Patterns  []MoodBucket  `json:"patterns"`
}

// EnergyDipData is the payload of the energy pattern insight.
type EnergyDipData struct {
	Day       time.Weekday `json:"day"`
	DayName   string       `json:"day_name"`
	Count     int          `json:"count"`
	DayCount  int          `json:"day_count"`
	HighCount int          `json:"high_count"`
}

// SleepQuality is the tier of an average sleep duration.
type SleepQuality string

const (
	SleepGood     SleepQuality = "good"
	SleepModerate SleepQuality = "moderate"
	SleepPoor     SleepQuality = "poor"
)

// SleepData is the payload of the sleep insight.
type SleepData struct {
	Average float64      `json:"average"`
	Quality SleepQuality `json:"quality"`
	Samples int          `json:"samples"`
}

// Direction of a correlation.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNeutral  Direction = "neutral"
)

// CorrelationInsight describes the relationship between two series. It is
// the payload of correlation pattern insights.
type CorrelationInsight struct {
	Variables   [2]string `json:"variables"`
	Coefficient float64   `json:"coefficient"`
	// Strength is |Coefficient|, in [0,1].
	Strength    float64   `json:"strength"`
	Direction   Direction `json:"direction"`
	Description string    `json:"description"`
	Examples    []string  `json:"examples"`
}

// TrendData is the payload of the weight trend insight.
type TrendData struct {
	Variable      string  `json:"variable"`
	SlopePerWeek  float64 `json:"slope_per_week"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Samples       int     `json:"samples"`
	Fit           float64 `json:"fit"`
	DirectionWord string  `json:"direction"`
}

func (MealScheduleData) patternType() PatternType   { return PatternEating }
func (FoodPreferenceData) patternType() PatternType { return PatternEating }
func (MoodCycleData) patternType() PatternType      { return PatternMoodCycle }
func (EnergyDipData) patternType() PatternType      { return PatternEnergy }
func (SleepData) patternType() PatternType          { return PatternSleep }
func (CorrelationInsight) patternType() PatternType { return PatternCorrelation }
func (TrendData) patternType() PatternType          { return PatternTrend }

// PredictionType classifies a forward-looking statement.
type PredictionType string

const (
	PredictEnergyDip     PredictionType = "energy_dip"
	PredictMoodChange    PredictionType = "mood_change"
	PredictMealTiming    PredictionType = "meal_timing"
	PredictSleepQuality  PredictionType = "sleep_quality"
	PredictStressTrigger PredictionType = "stress_trigger"
)

// PredictiveInsight is a heuristic projection from a detected pattern.
type PredictiveInsight struct {
	Type        PredictionType `json:"type"`
	Probability float64        `json:"probability"`
	Timeframe   string         `json:"timeframe"`
	Description string         `json:"description"`
	Prevention  string         `json:"prevention,omitempty"`
	Preparation string         `json:"preparation,omitempty"`
}

// Report bundles the three engine outputs for one user.
type Report struct {
	Patterns    []PatternInsight    `json:"patterns"`
	Predictions []PredictiveInsight `json:"predictions"`
	Prompts     []string            `json:"prompts"`
}
