// Package analysis runs the insight engine on behalf of the HTTP, MCP and
// CLI surfaces. It decodes documents, traces and measures each analysis,
// wraps reports in a Result envelope and optionally publishes them.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/habitlens/internal/analysis"

// ErrEmptyBatch is returned when a batch contains no subjects.
var ErrEmptyBatch = errors.New("batch contains no subjects")

// Publisher delivers finished results to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, res *Result) error
}

// Service analyzes documents with a swappable engine.
type Service struct {
	engine atomic.Pointer[insight.Engine]

	logger      *logging.Logger
	tracer      trace.Tracer
	metrics     *Metrics
	publisher   Publisher
	concurrency int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer used for analysis spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithPublisher publishes every result after analysis.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithConcurrency bounds parallel analyses in a batch.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides the time source for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wraps engine.
func NewService(engine *insight.Engine, opts ...Option) *Service {
	s := &Service{
		logger:      logging.NewNop(),
		tracer:      otel.Tracer(instrumentationName),
		metrics:     NewMetrics(),
		concurrency: 4,
		now:         time.Now,
	}
	s.engine.Store(engine)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the engine currently in use.
func (s *Service) Engine() *insight.Engine {
	return s.engine.Load()
}

// SetEngine swaps the engine. Analyses already running finish on the old
// one.
func (s *Service) SetEngine(e *insight.Engine) {
	s.engine.Store(e)
}

// SwapLexicon rebuilds the engine with lex, keeping thresholds and location.
func (s *Service) SwapLexicon(lex insight.Lexicon) error {
	cur := s.Engine()
	next, err := insight.NewEngine(
		insight.WithThresholds(cur.Thresholds()),
		insight.WithLocation(cur.Location()),
		insight.WithLexicon(lex),
	)
	if err != nil {
		return fmt.Errorf("rebuilding engine: %w", err)
	}
	s.SetEngine(next)
	return nil
}

// Analyze decodes doc and runs the full engine over it.
func (s *Service) Analyze(ctx context.Context, doc insight.Document) (*Result, error) {
	ctx = logging.WithSubjectID(ctx, doc.SubjectID())
	ctx, span := s.tracer.Start(ctx, "habitlens.analyze")
	defer span.End()

	if err := ctx.Err(); err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(OutcomeCancelled).Inc()
		span.SetStatus(codes.Error, "cancelled")
		return nil, err
	}

	engine := s.Engine()
	in, stats := doc.Decode(engine.Location())

	start := time.Now()
	report := engine.Run(in)
	s.metrics.Duration.Observe(time.Since(start).Seconds())

	res := s.newResult(doc.SubjectID(), stats, report)
	s.record(ctx, span, res, stats)
	s.publish(ctx, res)
	return res, nil
}

// AnalyzeBatch analyzes each document independently, in parallel. Results
// are in input order.
func (s *Service) AnalyzeBatch(ctx context.Context, docs []insight.Document) ([]*Result, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyBatch
	}

	ctx, span := s.tracer.Start(ctx, "habitlens.analyze_batch",
		trace.WithAttributes(attribute.Int("batch.size", len(docs))))
	defer span.End()

	engine := s.Engine()
	inputs := make([]insight.Input, len(docs))
	stats := make([]insight.DecodeStats, len(docs))
	for i, doc := range docs {
		inputs[i], stats[i] = doc.Decode(engine.Location())
	}

	start := time.Now()
	reports, err := insight.AnalyzeBatch(ctx, engine, inputs, s.concurrency)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(OutcomeCancelled).Add(float64(len(docs)))
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch aborted")
		return nil, fmt.Errorf("batch analysis: %w", err)
	}
	elapsed := time.Since(start).Seconds() / float64(len(docs))

	results := make([]*Result, len(docs))
	for i, report := range reports {
		s.metrics.Duration.Observe(elapsed)
		subjectCtx := logging.WithSubjectID(ctx, docs[i].SubjectID())
		results[i] = s.newResult(docs[i].SubjectID(), stats[i], report)
		s.record(subjectCtx, nil, results[i], stats[i])
		s.publish(subjectCtx, results[i])
	}

	s.logger.Info(ctx, "batch analysis complete", zap.Int("subjects", len(docs)))
	return results, nil
}

func (s *Service) newResult(userID string, stats insight.DecodeStats, report insight.Report) *Result {
	return &Result{
		ID:          uuid.NewString(),
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
		Records:     countsFrom(stats),
		Report:      report,
	}
}

// record updates metrics, span attributes and logs for one result. span may
// be nil for batch members.
func (s *Service) record(ctx context.Context, span trace.Span, res *Result, stats insight.DecodeStats) {
	outcome := OutcomeOK
	if res.Empty() {
		outcome = OutcomeEmpty
	}
	s.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	for _, p := range res.Patterns {
		s.metrics.InsightsTotal.WithLabelValues(string(p.Type)).Inc()
	}
	for _, p := range res.Predictions {
		s.metrics.PredictionsTotal.WithLabelValues(string(p.Type)).Inc()
	}
	if stats.SkippedMemories > 0 {
		s.metrics.RecordsSkippedTotal.WithLabelValues("memory").Add(float64(stats.SkippedMemories))
	}
	if stats.SkippedLogs > 0 {
		s.metrics.RecordsSkippedTotal.WithLabelValues("progress_log").Add(float64(stats.SkippedLogs))
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("analysis.id", res.ID),
			attribute.Int("records.memories", stats.Memories),
			attribute.Int("records.progress_logs", stats.ProgressLogs),
			attribute.Int("records.skipped", stats.Skipped()),
			attribute.Int("insights.patterns", len(res.Patterns)),
			attribute.Int("insights.predictions", len(res.Predictions)),
			attribute.Int("insights.prompts", len(res.Prompts)),
		)
	}

	if stats.Skipped() > 0 {
		s.logger.Warn(ctx, "skipped records with unparseable timestamps",
			zap.Int("memories", stats.SkippedMemories),
			zap.Int("progress_logs", stats.SkippedLogs),
		)
	}
	s.logger.Info(ctx, "analysis complete",
		zap.String("analysis.id", res.ID),
		zap.Int("patterns", len(res.Patterns)),
		zap.Int("predictions", len(res.Predictions)),
		zap.Int("prompts", len(res.Prompts)),
	)
}

// publish never fails the analysis; delivery errors are logged and counted.
func (s *Service) publish(ctx context.Context, res *Result) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, res); err != nil {
		s.metrics.PublishFailures.Inc()
		s.logger.Warn(ctx, "failed to publish analysis result",
			zap.String("analysis.id", res.ID),
			zap.Error(err),
		)
	}
}
