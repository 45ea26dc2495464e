package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// jan returns 2024-01-<day> at hour:00 UTC. January 1st 2024 is a Monday.
func jan(day, hour int) time.Time {
	return time.Date(2024, time.January, day, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func memory(t InsightType, content string, at time.Time) MemoryRecord {
	return MemoryRecord{UserID: "u1", InsightType: t, Content: content, CreatedAt: at}
}

func moodLog(mood string, at time.Time) ProgressLog {
	return ProgressLog{UserID: "u1", Date: at, Mood: mood}
}

func sleepLog(hours float64, at time.Time) ProgressLog {
	return ProgressLog{UserID: "u1", Date: at, SleepHours: ptr(hours)}
}

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func patternsOf(patterns []PatternInsight, typ PatternType) []PatternInsight {
	var out []PatternInsight
	for _, p := range patterns {
		if p.Type == typ {
			out = append(out, p)
		}
	}
	return out
}
