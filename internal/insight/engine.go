package insight

import (
	"fmt"
	"slices"
	"time"
)

// Engine runs the detectors over one user's records. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	th  Thresholds
	lex Lexicon
	loc *time.Location
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThresholds replaces the default thresholds table.
func WithThresholds(th Thresholds) EngineOption {
	return func(e *Engine) {
		e.th = th
	}
}

// WithLexicon replaces the built-in vocabularies.
func WithLexicon(lex Lexicon) EngineOption {
	return func(e *Engine) {
		e.lex = lex
	}
}

// WithLocation buckets timestamps by weekday and hour in loc instead of
// each timestamp's own location.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) {
		e.loc = loc
	}
}

// NewEngine creates an engine with the default thresholds and lexicon.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		th:  DefaultThresholds(),
		lex: DefaultLexicon(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.th.Validate(); err != nil {
		return nil, err
	}
	if e.th.MoodOrdinals == nil {
		e.th.MoodOrdinals = DefaultMoodOrdinals()
	} else {
		e.th.MoodOrdinals = cloneOrdinals(e.th.MoodOrdinals)
	}
	for _, v := range e.lex.Vocabularies() {
		if v.Version != LexiconVersion {
			return nil, fmt.Errorf("vocabulary %q: version %d not supported", v.Name, v.Version)
		}
	}
	return e, nil
}

// Thresholds returns a copy of the engine's thresholds.
func (e *Engine) Thresholds() Thresholds {
	th := e.th
	th.MoodOrdinals = cloneOrdinals(e.th.MoodOrdinals)
	return th
}

// Lexicon returns the engine's vocabularies.
func (e *Engine) Lexicon() Lexicon {
	return e.lex
}

// Location returns the bucketing location, nil when timestamps keep their
// own.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// AnalyzePatterns runs every detector in a fixed order and drops
// low-confidence results.
func (e *Engine) AnalyzePatterns(in Input) []PatternInsight {
	memories, logs := chronological(in)

	var all []PatternInsight
	all = append(all, DetectEatingPatterns(
		ExtractMealTimes(memories, e.lex, e.loc),
		ExtractFoodPreferences(memories, e.lex),
		in.Profile, e.th)...)
	all = append(all, DetectMoodCycles(ExtractMoods(logs, e.loc), e.th)...)
	all = append(all, DetectEnergyPatterns(ExtractEnergyReadings(memories, e.lex, e.loc), e.th)...)
	all = append(all, DetectSleepPatterns(ExtractSleepHours(logs), e.th)...)
	all = append(all, DetectMoodSleepCorrelation(ExtractMoodSleepPairs(logs, e.loc), e.th)...)
	all = append(all, DetectWeightTrend(ExtractWeights(logs), in.Profile, e.th)...)

	out := make([]PatternInsight, 0, len(all))
	for _, p := range all {
		if p.Confidence != ConfidenceLow {
			out = append(out, p)
		}
	}
	return out
}

// GeneratePredictiveInsights projects the detected patterns forward.
func (e *Engine) GeneratePredictiveInsights(in Input) []PredictiveInsight {
	return Predict(e.AnalyzePatterns(in), e.th)
}

// GenerateContextualPrompts renders patterns and predictions as prompts.
func (e *Engine) GenerateContextualPrompts(in Input) []string {
	return e.Run(in).Prompts
}

// Run computes patterns once and derives predictions and prompts from them.
func (e *Engine) Run(in Input) Report {
	patterns := e.AnalyzePatterns(in)
	predictions := Predict(patterns, e.th)
	prompts := ComposePrompts(patterns, predictions, e.th)
	if predictions == nil {
		predictions = []PredictiveInsight{}
	}
	if prompts == nil {
		prompts = []string{}
	}
	return Report{
		Patterns:    patterns,
		Predictions: predictions,
		Prompts:     prompts,
	}
}

// chronological returns time-ordered copies of the input records. The
// caller's slices are left untouched.
func chronological(in Input) ([]MemoryRecord, []ProgressLog) {
	memories := slices.Clone(in.Memories)
	slices.SortStableFunc(memories, func(a, b MemoryRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	logs := slices.Clone(in.ProgressLogs)
	slices.SortStableFunc(logs, func(a, b ProgressLog) int {
		return a.Date.Compare(b.Date)
	})
	return memories, logs
}

func cloneOrdinals(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[normalizeMood(k)] = v
	}
	return out
}
