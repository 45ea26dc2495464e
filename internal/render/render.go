// Package render formats analysis results for terminals and documents.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned for a format other than text, markdown or json.
var ErrUnknownFormat = errors.New("unknown output format")

// Series holds chronological values charted next to a text report.
type Series struct {
	SleepHours []float64
	Mood       []float64
}

// SeriesFrom extracts sleep hours and mood ordinals from in, oldest first.
// Values the detectors would ignore are skipped.
func SeriesFrom(in insight.Input, th insight.Thresholds) Series {
	logs := make([]insight.ProgressLog, len(in.ProgressLogs))
	copy(logs, in.ProgressLogs)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })

	var s Series
	s.SleepHours = insight.ExtractSleepHours(logs)
	for _, m := range insight.ExtractMoods(logs, nil) {
		s.Mood = append(s.Mood, float64(insight.MoodToOrdinal(m.Mood, th)))
	}
	return s
}

type options struct {
	series Series
	width  int
}

// Option configures Format.
type Option func(*options)

// WithSeries charts s in text reports.
func WithSeries(s Series) Option {
	return func(o *options) {
		o.series = s
	}
}

// WithWidth sets the width of bars and charts in text reports.
func WithWidth(w int) Option {
	return func(o *options) {
		if w > 0 {
			o.width = w
		}
	}
}

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Format renders res in the named format.
func Format(res *analysis.Result, format string, opts ...Option) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	o := options{width: defaultWidth}
	for _, opt := range opts {
		opt(&o)
	}

	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data) + "\n", nil
	case FormatMarkdown:
		return markdown(res), nil
	default:
		return text(res, o), nil
	}
}

func percent(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}

func subjectLabel(res *analysis.Result) string {
	if res.UserID == "" {
		return "anonymous"
	}
	return res.UserID
}
