package insight

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Document is the JSON form of one user's inputs. Timestamps are strings so
// a single malformed record can be skipped instead of failing the document.
type Document struct {
	UserID       string           `json:"user_id"`
	Profile      UserProfile      `json:"profile"`
	Memories     []MemoryDoc      `json:"memories"`
	ProgressLogs []ProgressLogDoc `json:"progress_logs"`
}

// MemoryDoc is the JSON form of a MemoryRecord.
type MemoryDoc struct {
	ID          string         `json:"id,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	InsightType InsightType    `json:"insight_type,omitempty"`
	Content     string         `json:"content"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

// ProgressLogDoc is the JSON form of a ProgressLog.
type ProgressLogDoc struct {
	ID          string   `json:"id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Date        string   `json:"date"`
	Weight      *float64 `json:"weight,omitempty"`
	Calories    *int     `json:"calories,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	SleepHours  *float64 `json:"sleep_hours,omitempty"`
	Steps       *int     `json:"steps,omitempty"`
	StressLevel *int     `json:"stress_level,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// DecodeStats counts the records kept and skipped by Document.Decode.
type DecodeStats struct {
	Memories        int `json:"memories"`
	ProgressLogs    int `json:"progress_logs"`
	SkippedMemories int `json:"skipped_memories"`
	SkippedLogs     int `json:"skipped_logs"`
}

// Skipped is the total number of dropped records.
func (s DecodeStats) Skipped() int {
	return s.SkippedMemories + s.SkippedLogs
}

// timeLayouts are tried in order. Layouts without a zone are read in the
// decode location.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses s with the accepted layouts. loc applies to zoneless
// values; nil means UTC.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ReadDocument decodes a single Document from r.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// Batch is the JSON form of several users' inputs.
type Batch struct {
	Subjects []Document `json:"subjects"`
}

// ReadBatch decodes a Batch from r.
func ReadBatch(r io.Reader) (Batch, error) {
	var b Batch
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("failed to decode batch: %w", err)
	}
	return b, nil
}

// Decode converts the document into engine input, dropping records whose
// timestamps do not parse. Records without a user id inherit the document's.
func (d Document) Decode(loc *time.Location) (Input, DecodeStats) {
	var (
		in    Input
		stats DecodeStats
	)
	subject := d.SubjectID()
	in.Profile = d.Profile
	if in.Profile.UserID == "" {
		in.Profile.UserID = subject
	}

	for _, m := range d.Memories {
		at, err := ParseTimestamp(m.CreatedAt, loc)
		if err != nil {
			stats.SkippedMemories++
			continue
		}
		in.Memories = append(in.Memories, MemoryRecord{
			ID:          m.ID,
			UserID:      firstNonEmpty(m.UserID, subject),
			InsightType: m.InsightType,
			Content:     m.Content,
			Metadata:    m.Metadata,
			CreatedAt:   at,
		})
	}

	for _, l := range d.ProgressLogs {
		at, err := ParseTimestamp(l.Date, loc)
		if err != nil {
			stats.SkippedLogs++
			continue
		}
		in.ProgressLogs = append(in.ProgressLogs, ProgressLog{
			ID:          l.ID,
			UserID:      firstNonEmpty(l.UserID, subject),
			Date:        at,
			Weight:      l.Weight,
			Calories:    l.Calories,
			Mood:        l.Mood,
			SleepHours:  l.SleepHours,
			Steps:       l.Steps,
			StressLevel: l.StressLevel,
			Notes:       l.Notes,
		})
	}

	stats.Memories = len(in.Memories)
	stats.ProgressLogs = len(in.ProgressLogs)
	return in, stats
}

// SubjectID returns the user id the document is about.
func (d Document) SubjectID() string {
	return firstNonEmpty(d.UserID, d.Profile.UserID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
