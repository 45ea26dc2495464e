package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	"github.com/fyrsmithlabs/habitlens/internal/config"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/logging"
	"github.com/fyrsmithlabs/habitlens/internal/publish"
	"github.com/fyrsmithlabs/habitlens/internal/telemetry"
	"github.com/fyrsmithlabs/habitlens/internal/vocabulary"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/habitlens/cmd/habitlens"

// runtime holds the dependencies shared by every command.
type runtime struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	publisher *publish.Publisher
}

// newRuntime loads configuration and initializes logging and telemetry.
func newRuntime(ctx context.Context, opts *rootOptions) (*runtime, error) {
	cfg, err := config.LoadWithFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Observability, version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	logger, err := initLogger(cfg, tel)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, telemetry: tel}, nil
}

func initLogger(cfg *config.Config, tel *telemetry.Telemetry) (*logging.Logger, error) {
	lc, err := logging.FromConfig(cfg.Logging, cfg.Observability.ServiceName)
	if err != nil {
		return nil, err
	}
	provider := tel.LoggerProvider()
	lc.Output.OTEL = provider != nil
	return logging.NewLogger(lc, provider)
}

// newEngine builds an engine from the engine section, applying the
// vocabulary file on top of the built-in lexicon when one is configured.
func (r *runtime) newEngine(lex *insight.Lexicon) (*insight.Engine, error) {
	loc, err := r.cfg.Engine.Location()
	if err != nil {
		return nil, err
	}

	lexicon := insight.DefaultLexicon()
	switch {
	case lex != nil:
		lexicon = *lex
	case r.cfg.Engine.VocabularyFile != "":
		lexicon, err = vocabulary.Load(r.cfg.Engine.VocabularyFile, lexicon)
		if err != nil {
			return nil, err
		}
	}

	return insight.NewEngine(
		insight.WithThresholds(r.cfg.Engine.Thresholds),
		insight.WithLocation(loc),
		insight.WithLexicon(lexicon),
	)
}

// newService wraps engine with the runtime's logger, tracer and, when
// enabled, the NATS publisher.
func (r *runtime) newService(ctx context.Context, engine *insight.Engine) (*analysis.Service, error) {
	opts := []analysis.Option{
		analysis.WithLogger(r.logger),
		analysis.WithTracer(r.telemetry.Tracer(instrumentationName)),
		analysis.WithConcurrency(r.cfg.Server.BatchConcurrency),
	}

	if r.cfg.Publish.Enabled {
		p, err := publish.Connect(r.cfg.Publish, r.logger)
		if err != nil {
			return nil, err
		}
		r.publisher = p
		opts = append(opts, analysis.WithPublisher(p))
		r.logger.Info(ctx, "publishing results to nats",
			zap.String("subject_prefix", r.cfg.Publish.SubjectPrefix))
	}

	return analysis.NewService(engine, opts...), nil
}

// Close releases the publisher and flushes telemetry and logs.
func (r *runtime) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if err := r.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher close: %w", err))
	}
	if err := r.telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
	}
	_ = r.logger.Sync()
	return errors.Join(errs...)
}

// openInput returns stdin for "" or "-", otherwise the named file.
func openInput(stdin io.Reader, arg string) (io.ReadCloser, error) {
	if arg == "" || arg == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", arg, err)
	}
	return f, nil
}
