package analysis

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Analysis outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeEmpty     = "empty"
	OutcomeCancelled = "cancelled"
)

// Metrics holds Prometheus metrics for the analysis service.
type Metrics struct {
	AnalysesTotal       *prometheus.CounterVec
	InsightsTotal       *prometheus.CounterVec
	PredictionsTotal    *prometheus.CounterVec
	RecordsSkippedTotal *prometheus.CounterVec
	PublishFailures     prometheus.Counter
	Duration            prometheus.Histogram
}

// NewMetrics registers the analysis metrics on the default registry once
// per process and returns them.
//
// Metrics:
//   - habitlens_analyses_total{outcome} - analyses by outcome (ok, empty, cancelled)
//   - habitlens_insights_total{type} - pattern insights returned, by pattern type
//   - habitlens_predictions_total{type} - predictions returned, by prediction type
//   - habitlens_records_skipped_total{kind} - records dropped for unparseable timestamps
//   - habitlens_publish_failures_total - results that could not be published
//   - habitlens_analysis_duration_seconds - time spent per analysis
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			AnalysesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "habitlens_analyses_total",
					Help: "Total number of analyses by outcome",
				},
				[]string{"outcome"},
			),
			InsightsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "habitlens_insights_total",
					Help: "Total number of pattern insights returned",
				},
				[]string{"type"},
			),
			PredictionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "habitlens_predictions_total",
					Help: "Total number of predictive insights returned",
				},
				[]string{"type"},
			),
			RecordsSkippedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "habitlens_records_skipped_total",
					Help: "Total number of input records skipped during decoding",
				},
				[]string{"kind"}, // "memory" or "progress_log"
			),
			PublishFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "habitlens_publish_failures_total",
					Help: "Total number of analysis results that failed to publish",
				},
			),
			Duration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "habitlens_analysis_duration_seconds",
					Help:    "Duration of a single analysis in seconds",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~0.8s
				},
			),
		}
	})
	return globalMetrics
}
