package analysis

import (
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

// Result is the envelope returned to callers and published downstream.
type Result struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
	Records     RecordCounts `json:"records"`
	insight.Report
}

// RecordCounts reports how many input records were analyzed and skipped.
type RecordCounts struct {
	Memories        int `json:"memories"`
	ProgressLogs    int `json:"progress_logs"`
	SkippedMemories int `json:"skipped_memories,omitempty"`
	SkippedLogs     int `json:"skipped_progress_logs,omitempty"`
}

func countsFrom(s insight.DecodeStats) RecordCounts {
	return RecordCounts{
		Memories:        s.Memories,
		ProgressLogs:    s.ProgressLogs,
		SkippedMemories: s.SkippedMemories,
		SkippedLogs:     s.SkippedLogs,
	}
}

// Empty reports whether the analysis produced nothing.
func (r *Result) Empty() bool {
	return len(r.Patterns) == 0 && len(r.Predictions) == 0
}
