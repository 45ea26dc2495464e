// Package config provides configuration loading for habitlens.
//
// Configuration comes from a YAML file with environment overrides on top of
// the defaults returned by Default. See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

// Config holds the complete habitlens configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Engine        EngineConfig        `koanf:"engine"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
	Publish       PublishConfig       `koanf:"publish"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
	// MaxBatch caps the number of subjects in one batch request.
	MaxBatch         int `koanf:"max_batch"`
	BatchConcurrency int `koanf:"batch_concurrency"`
}

// EngineConfig holds the analysis thresholds and input interpretation.
type EngineConfig struct {
	insight.Thresholds `koanf:",squash"`

	// Timezone buckets weekdays and hours in a fixed IANA zone. Empty keeps
	// each timestamp's own offset.
	Timezone string `koanf:"timezone"`
	// VocabularyFile optionally replaces built-in keyword vocabularies.
	VocabularyFile string `koanf:"vocabulary_file"`
	// WatchVocabulary reloads VocabularyFile on change while serving.
	WatchVocabulary bool `koanf:"watch_vocabulary"`
}

// Location resolves Timezone. A nil location means timestamps keep their
// own offset.
func (e EngineConfig) Location() (*time.Location, error) {
	switch e.Timezone {
	case "":
		return nil, nil
	case "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", e.Timezone, err)
	}
	return loc, nil
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool    `koanf:"enable_telemetry"`
	ServiceName     string  `koanf:"service_name"`
	Endpoint        string  `koanf:"endpoint"`
	Protocol        string  `koanf:"protocol"`
	Insecure        bool    `koanf:"insecure"`
	SampleRate      float64 `koanf:"sample_rate"`
}

// PublishConfig controls publishing of analysis results to NATS.
type PublishConfig struct {
	Enabled       bool          `koanf:"enabled"`
	NATSURL       string        `koanf:"nats_url"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	Token         Secret        `koanf:"token"`
	Timeout       time.Duration `koanf:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             9090,
			ShutdownTimeout:  10 * time.Second,
			RateLimit:        20,
			RateBurst:        40,
			MaxBatch:         500,
			BatchConcurrency: 8,
		},
		Engine: EngineConfig{
			Thresholds: insight.DefaultThresholds(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: false,
			ServiceName:     "habitlens",
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			Insecure:        true,
			SampleRate:      1.0,
		},
		Publish: PublishConfig{
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "habitlens.insights",
			Timeout:       5 * time.Second,
		},
	}
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}
	if c.Server.MaxBatch < 1 {
		return fmt.Errorf("max batch must be positive, got %d", c.Server.MaxBatch)
	}

	if err := c.Engine.Thresholds.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if _, err := c.Engine.Location(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.WatchVocabulary && c.Engine.VocabularyFile == "" {
		return errors.New("engine: watch_vocabulary requires vocabulary_file")
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging: format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	if c.Publish.Enabled {
		if c.Publish.NATSURL == "" {
			return errors.New("publish: nats_url required when publishing is enabled")
		}
		if c.Publish.SubjectPrefix == "" || strings.ContainsAny(c.Publish.SubjectPrefix, " *>") {
			return fmt.Errorf("publish: invalid subject prefix %q", c.Publish.SubjectPrefix)
		}
	}

	return nil
}
