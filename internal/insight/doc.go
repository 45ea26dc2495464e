// Package insight turns a user's behavioral records into pattern,
// correlation and predictive insights.
//
// The engine is a pure transformation. It reads memory records (free-text
// notes), progress logs (dated mood, sleep and weight check-ins) and a user
// profile, and returns:
//   - PatternInsight values from the eating, mood cycle, energy, sleep,
//     correlation and (opt-in) weight trend detectors
//   - PredictiveInsight values projected from those patterns
//   - short advisory prompts for a conversational layer
//
// # Data flow
//
// Records are sorted by time, then lexical extractors and bucketing helpers
// turn them into typed observations. Each detector reads one observation set
// and stays silent when the sample is below its threshold. Predictions read
// detected patterns, never raw records.
//
// # Usage
//
//	engine, err := insight.NewEngine(insight.WithLocation(loc))
//	if err != nil {
//	    return err
//	}
//	report := engine.Run(insight.Input{
//	    Memories:     memories,
//	    ProgressLogs: logs,
//	    Profile:      profile,
//	})
//
// # Thresholds
//
// Every gate, window width, quality tier, probability and the mood ordinal
// scale live in Thresholds. DefaultThresholds reproduces the stock
// sensitivity; nothing in a detector hard-codes a number.
//
// # Vocabularies
//
// Keyword extraction is driven by a Lexicon of versioned Vocabulary values.
// Text that matches no keyword produces no observation.
package insight
