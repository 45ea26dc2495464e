package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "habitlens", cfg.Observability.ServiceName)
	assert.Equal(t, 7, cfg.Engine.MinMoodLogs)
	assert.False(t, cfg.Engine.WeightTrend)

	loc, err := cfg.Engine.Location()
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"no shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"no batch", func(c *Config) { c.Server.MaxBatch = 0 }},
		{"bad thresholds", func(c *Config) { c.Engine.MinCorrelationPairs = 1 }},
		{"bad timezone", func(c *Config) { c.Engine.Timezone = "Nowhere/Special" }},
		{"watch without file", func(c *Config) { c.Engine.WatchVocabulary = true }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"telemetry without name", func(c *Config) {
			c.Observability.EnableTelemetry = true
			c.Observability.ServiceName = ""
		}},
		{"publish without url", func(c *Config) {
			c.Publish.Enabled = true
			c.Publish.NATSURL = ""
		}},
		{"publish wildcard prefix", func(c *Config) {
			c.Publish.Enabled = true
			c.Publish.SubjectPrefix = "habitlens.>"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEngineConfig_Location(t *testing.T) {
	loc, err := EngineConfig{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = EngineConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = EngineConfig{Timezone: "Mars/Olympus"}.Location()
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "hunter2", s.Value())
	assert.True(t, s.IsSet())

	b, err := json.Marshal(struct{ Token Secret }{s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Token":"[REDACTED]"}`, string(b))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
