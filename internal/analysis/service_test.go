package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/fyrsmithlabs/habitlens/internal/telemetry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var fixedNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// sampleDocument holds a Tuesday energy dip and five sleep/mood logs whose
// mood rises with sleep.
func sampleDocument(userID string) insight.Document {
	doc := insight.Document{
		UserID:  userID,
		Profile: insight.UserProfile{Goal: "lose weight"},
		Memories: []insight.MemoryDoc{
			{InsightType: insight.InsightEnergyLevel, Content: "feeling tired", CreatedAt: "2024-01-02T15:00:00Z"},
			{InsightType: insight.InsightEnergyLevel, Content: "so energetic", CreatedAt: "2024-01-03T09:00:00Z"},
			{InsightType: insight.InsightEnergyLevel, Content: "tired again", CreatedAt: "2024-01-04T15:00:00Z"},
			{InsightType: insight.InsightEnergyLevel, Content: "okay", CreatedAt: "2024-01-05T09:00:00Z"},
			{InsightType: insight.InsightEnergyLevel, Content: "low energy all afternoon", CreatedAt: "2024-01-09T15:00:00Z"},
		},
	}
	for i, mood := range []string{"sad", "stressed", "stressed", "happy", "energetic"} {
		doc.ProgressLogs = append(doc.ProgressLogs, insight.ProgressLogDoc{
			Date:       fmt.Sprintf("2024-01-%02dT07:00:00Z", 1+i),
			Mood:       mood,
			SleepHours: ptr(float64(5 + i)),
		})
	}
	return doc
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []*Result
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, res *Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.results = append(p.results, res)
	return nil
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	e, err := insight.NewEngine()
	require.NoError(t, err)
	return NewService(e, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestService_Analyze(t *testing.T) {
	tl := logging.NewTestLogger()
	tt := telemetry.NewTestTelemetry()
	svc := newTestService(t, WithLogger(tl.Logger), WithTracer(tt.Tracer("test")))

	okBefore := testutil.ToFloat64(svc.metrics.AnalysesTotal.WithLabelValues(OutcomeOK))
	energyBefore := testutil.ToFloat64(svc.metrics.InsightsTotal.WithLabelValues(string(insight.PatternEnergy)))

	res, err := svc.Analyze(context.Background(), sampleDocument("user-1"))
	require.NoError(t, err)

	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, fixedNow, res.GeneratedAt)
	assert.Equal(t, RecordCounts{Memories: 5, ProgressLogs: 5}, res.Records)

	require.Len(t, res.Patterns, 2)
	assert.Equal(t, insight.PatternEnergy, res.Patterns[0].Type)
	assert.Equal(t, insight.PatternCorrelation, res.Patterns[1].Type)
	require.Len(t, res.Predictions, 1)
	assert.Len(t, res.Prompts, 2)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(svc.metrics.AnalysesTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, energyBefore+1, testutil.ToFloat64(svc.metrics.InsightsTotal.WithLabelValues(string(insight.PatternEnergy))))

	tl.AssertLogged(t, zapcore.InfoLevel, "analysis complete")
	tl.AssertField(t, "analysis complete", "subject.id", "user-1")
	tl.AssertField(t, "analysis complete", "patterns", int64(2))
	tl.AssertNoContent(t)

	tt.AssertSpanExists(t, "habitlens.analyze")
	tt.AssertSpanAttribute(t, "habitlens.analyze", "insights.patterns", int64(2))
	tt.AssertSpanAttribute(t, "habitlens.analyze", "records.memories", int64(5))
	tt.AssertSpanAttribute(t, "habitlens.analyze", "analysis.id", res.ID)
}

func TestService_AnalyzeMatchesEngine(t *testing.T) {
	svc := newTestService(t)
	doc := sampleDocument("user-1")

	res, err := svc.Analyze(context.Background(), doc)
	require.NoError(t, err)

	in, _ := doc.Decode(nil)
	assert.Equal(t, svc.Engine().Run(in), res.Report)
}

func TestService_SkippedRecords(t *testing.T) {
	tl := logging.NewTestLogger()
	svc := newTestService(t, WithLogger(tl.Logger))

	doc := sampleDocument("user-2")
	doc.Memories = append(doc.Memories, insight.MemoryDoc{InsightType: insight.InsightEnergyLevel, Content: "tired", CreatedAt: "last week"})
	doc.ProgressLogs = append(doc.ProgressLogs, insight.ProgressLogDoc{Date: "", Mood: "sad"})

	memBefore := testutil.ToFloat64(svc.metrics.RecordsSkippedTotal.WithLabelValues("memory"))
	logBefore := testutil.ToFloat64(svc.metrics.RecordsSkippedTotal.WithLabelValues("progress_log"))

	res, err := svc.Analyze(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, RecordCounts{Memories: 5, ProgressLogs: 5, SkippedMemories: 1, SkippedLogs: 1}, res.Records)
	assert.Len(t, res.Patterns, 2)

	assert.Equal(t, memBefore+1, testutil.ToFloat64(svc.metrics.RecordsSkippedTotal.WithLabelValues("memory")))
	assert.Equal(t, logBefore+1, testutil.ToFloat64(svc.metrics.RecordsSkippedTotal.WithLabelValues("progress_log")))
	tl.AssertLogged(t, zapcore.WarnLevel, "skipped records")
}

func TestService_EmptyDocument(t *testing.T) {
	svc := newTestService(t)
	before := testutil.ToFloat64(svc.metrics.AnalysesTotal.WithLabelValues(OutcomeEmpty))

	res, err := svc.Analyze(context.Background(), insight.Document{UserID: "nobody"})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.NotNil(t, res.Prompts)
	assert.Equal(t, before+1, testutil.ToFloat64(svc.metrics.AnalysesTotal.WithLabelValues(OutcomeEmpty)))
}

func TestService_Cancelled(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, WithPublisher(pub))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Analyze(ctx, sampleDocument("user-1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pub.results)
}

func TestService_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, WithPublisher(pub))

	res, err := svc.Analyze(context.Background(), sampleDocument("user-1"))
	require.NoError(t, err)
	require.Len(t, pub.results, 1)
	assert.Same(t, res, pub.results[0])
}

func TestService_PublishFailureDoesNotFail(t *testing.T) {
	tl := logging.NewTestLogger()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, WithPublisher(pub), WithLogger(tl.Logger))
	before := testutil.ToFloat64(svc.metrics.PublishFailures)

	res, err := svc.Analyze(context.Background(), sampleDocument("user-1"))
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, before+1, testutil.ToFloat64(svc.metrics.PublishFailures))
	tl.AssertLogged(t, zapcore.WarnLevel, "failed to publish")
}

func TestService_AnalyzeBatch(t *testing.T) {
	pub := &recordingPublisher{}
	tt := telemetry.NewTestTelemetry()
	svc := newTestService(t, WithPublisher(pub), WithConcurrency(2), WithTracer(tt.Tracer("test")))

	docs := []insight.Document{sampleDocument("a"), {UserID: "b"}, sampleDocument("c")}
	results, err := svc.AnalyzeBatch(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].UserID)
	assert.Equal(t, "b", results[1].UserID)
	assert.Equal(t, "c", results[2].UserID)
	assert.Len(t, results[0].Patterns, 2)
	assert.True(t, results[1].Empty())
	assert.NotEqual(t, results[0].ID, results[2].ID)
	assert.Len(t, pub.results, 3)

	tt.AssertSpanAttribute(t, "habitlens.analyze_batch", "batch.size", int64(3))
}

func TestService_AnalyzeBatchErrors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AnalyzeBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.AnalyzeBatch(ctx, []insight.Document{sampleDocument("a")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_SwapLexicon(t *testing.T) {
	th := insight.DefaultThresholds()
	th.MinSleepLogs = 5
	e, err := insight.NewEngine(insight.WithThresholds(th), insight.WithLocation(time.UTC))
	require.NoError(t, err)
	svc := NewService(e)

	lex := insight.DefaultLexicon()
	lex.EnergyLow.Keywords = []string{"drained"}
	require.NoError(t, svc.SwapLexicon(lex))

	assert.NotSame(t, e, svc.Engine())
	assert.Equal(t, 5, svc.Engine().Thresholds().MinSleepLogs)
	assert.Equal(t, time.UTC, svc.Engine().Location())

	res, err := svc.Analyze(context.Background(), sampleDocument("user-1"))
	require.NoError(t, err)
	for _, p := range res.Patterns {
		assert.NotEqual(t, insight.PatternEnergy, p.Type)
	}

	lex.Foods.Version = 7
	assert.Error(t, svc.SwapLexicon(lex))
}

func TestResult_JSON(t *testing.T) {
	svc := newTestService(t)
	res, err := svc.Analyze(context.Background(), sampleDocument("user-1"))
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	for _, key := range []string{"id", "user_id", "generated_at", "records", "patterns", "predictions", "prompts"} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "Report")
}
