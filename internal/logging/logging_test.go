package logging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"trace", TraceLevel},
		{"TRACE", TraceLevel},
		{"debug", zapcore.DebugLevel},
		{" info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := LevelFromString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := LevelFromString("loud")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(config.LoggingConfig{Level: "debug", Format: "console"}, "habitlens-test")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "habitlens-test", cfg.Fields["service"])
	require.NoError(t, cfg.Validate())

	_, err = FromConfig(config.LoggingConfig{Level: "loud"}, "")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, NewDefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "xml" }},
		{"no output", func(c *Config) { c.Output = OutputConfig{Stream: StreamNone} }},
		{"unknown stream", func(c *Config) { c.Output.Stream = "file" }},
		{"tick", func(c *Config) { c.Sampling.Tick = 0 }},
		{"caller skip", func(c *Config) { c.Caller.Skip = -1 }},
		{"pattern", func(c *Config) { c.Redaction.Patterns = []string{"("} }},
		{"empty field", func(c *Config) { c.Fields["env"] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	otelOnly := NewDefaultConfig()
	otelOnly.Output = OutputConfig{Stream: StreamNone, OTEL: true}
	assert.NoError(t, otelOnly.Validate())
}

func TestNewLogger(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = zapcore.WarnLevel

	logger, err := NewLogger(cfg, nil)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Enabled(zapcore.ErrorLevel))
	assert.NoError(t, logger.Sync())

	cfg.Output.Stream = StreamNone
	cfg.Output.OTEL = true
	_, err = NewLogger(cfg, nil)
	assert.Error(t, err, "otel output without a provider leaves no core")
}

func TestSampledCore(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled: true,
		Tick:    config.Duration(time.Minute),
		Levels: map[zapcore.Level]LevelSamplingConfig{
			zapcore.InfoLevel:  {Initial: 2, Thereafter: 0},
			zapcore.ErrorLevel: {Initial: 1, Thereafter: 0},
		},
	})
	z := zap.New(sampled)

	for i := 0; i < 5; i++ {
		z.Info("repeated")
		z.Warn("unsampled")
		z.Error("failure")
	}

	assert.Equal(t, 2, observed.FilterMessage("repeated").Len())
	assert.Equal(t, 5, observed.FilterMessage("unsampled").Len())
	assert.Equal(t, 5, observed.FilterMessage("failure").Len(), "errors are never sampled")
}

func TestSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Same(t, core, newSampledCore(core, SamplingConfig{}))
}

func encode(t *testing.T, enc zapcore.Encoder, fields ...zapcore.Field) map[string]any {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "m"}, fields)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRedactingEncoder(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	out := encode(t, enc,
		zap.String("content", "felt awful after the party"),
		zap.String("Notes", "private"),
		zap.String("header", "Bearer abc123"),
		Secret("nats_auth", config.Secret("hunter2")),
		zap.Int("patterns", 3),
		zap.String("subject.id", "u-1"),
	)

	assert.Equal(t, "[REDACTED]", out["content"])
	assert.Equal(t, "[REDACTED]", out["Notes"])
	assert.Equal(t, "[REDACTED:pattern]", out["header"])
	assert.Equal(t, map[string]any{"nats_auth": "[REDACTED:7]"}, out["nats_auth"])
	assert.EqualValues(t, 3, out["patterns"])
	assert.Equal(t, "u-1", out["subject.id"])

	// Fields attached with With go through the Add methods.
	clone := enc.Clone()
	zap.String("note", "diary").AddTo(clone)
	assert.Equal(t, "[REDACTED]", encode(t, clone)["note"])
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{})
	require.NoError(t, err)
	assert.Equal(t, "kept", encode(t, enc, zap.String("content", "kept"))["content"])
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("token", "abcdef")
	assert.Equal(t, "[REDACTED:6]", f.String)
}

func TestTraceLevelEncoding(t *testing.T) {
	out := encode(t, newEncoder("json"))
	assert.Equal(t, "info", out["level"])

	buf, err := newEncoder("json").EncodeEntry(zapcore.Entry{Level: TraceLevel, Message: "m"}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"trace"`)
}

func TestContextFields(t *testing.T) {
	assert.Empty(t, ContextFields(context.Background()))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithSubjectID(ctx, "user-42")
	ctx = WithRequestID(ctx, "req_1")

	tl := NewTestLogger()
	tl.Info(ctx, "analysis complete", zap.Int("patterns", 2))

	tl.AssertLogged(t, zapcore.InfoLevel, "analysis complete")
	tl.AssertField(t, "analysis complete", "trace_id", sc.TraceID().String())
	tl.AssertField(t, "analysis complete", "span_id", sc.SpanID().String())
	tl.AssertField(t, "analysis complete", "trace_sampled", true)
	tl.AssertField(t, "analysis complete", "subject.id", "user-42")
	tl.AssertField(t, "analysis complete", "request.id", "req_1")
	tl.AssertField(t, "analysis complete", "patterns", int64(2))
	tl.AssertNoContent(t)
}

func TestWithSubjectID_InvalidIsDropped(t *testing.T) {
	ctx := WithSubjectID(context.Background(), "bad id\n")
	assert.Empty(t, SubjectIDFromContext(ctx))

	ctx = WithSubjectID(context.Background(), "alice@example.com")
	assert.Equal(t, "alice@example.com", SubjectIDFromContext(ctx))
}

func TestWithRequestID_Panics(t *testing.T) {
	assert.Panics(t, func() { WithRequestID(context.Background(), "") })
	assert.Panics(t, func() { WithRequestID(context.Background(), "a b") })
}

func TestFromContext(t *testing.T) {
	nop := FromContext(context.Background())
	require.NotNil(t, nop)
	assert.False(t, nop.Enabled(zapcore.ErrorLevel))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Named("engine").Warn(ctx, "slow")
	tl.AssertLogged(t, zapcore.WarnLevel, "slow")
	tl.AssertNotLogged(t, zapcore.InfoLevel, "slow")

	tl.Reset()
	assert.Empty(t, tl.All())
}

func TestTraceLevel(t *testing.T) {
	tl := NewTestLogger()
	tl.Trace(context.Background(), "record skipped")
	tl.AssertLogged(t, TraceLevel, "record skipped")

	quiet := tl.With(zap.String("k", "v"))
	quiet.Debug(context.Background(), "child")
	assert.Equal(t, 1, tl.FilterMessage("child").Len())
}
