package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fyrsmithlabs/habitlens/internal/analysis"
	httpserver "github.com/fyrsmithlabs/habitlens/internal/http"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
	"github.com/fyrsmithlabs/habitlens/internal/vocabulary"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type serveOptions struct {
	host       string
	port       int
	vocabulary string
	watch      bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

Endpoints:
  GET  /health
  GET  /metrics
  POST /api/v1/analyze
  POST /api/v1/analyze/batch
  POST /api/v1/prompts

With --watch the vocabulary file is reloaded whenever it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, root, opts, cmd.Flags().Changed)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "override server.host")
	cmd.Flags().IntVar(&opts.port, "port", 0, "override server.http_port")
	cmd.Flags().StringVar(&opts.vocabulary, "vocabulary", "", "override engine.vocabulary_file")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the vocabulary file on change")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, opts *serveOptions, changed func(string) bool) error {
	rt, err := newRuntime(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	cfg := rt.cfg
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if opts.vocabulary != "" {
		cfg.Engine.VocabularyFile = opts.vocabulary
	}
	if changed("watch") {
		cfg.Engine.WatchVocabulary = opts.watch
	}
	if cfg.Engine.WatchVocabulary && cfg.Engine.VocabularyFile == "" {
		return errors.New("--watch requires a vocabulary file")
	}

	var watcher *vocabulary.Watcher
	var initial *insight.Lexicon
	if cfg.Engine.WatchVocabulary {
		watcher, err = vocabulary.NewWatcher(cfg.Engine.VocabularyFile, insight.DefaultLexicon())
		if err != nil {
			return err
		}
		defer watcher.Stop()
		lex, err := watcher.Start(ctx)
		if err != nil {
			return fmt.Errorf("loading vocabulary: %w", err)
		}
		initial = &lex
	}

	engine, err := rt.newEngine(initial)
	if err != nil {
		return err
	}
	svc, err := rt.newService(ctx, engine)
	if err != nil {
		return err
	}
	if watcher != nil {
		go reloadVocabulary(ctx, rt, svc, watcher)
	}

	server, err := httpserver.NewServer(svc, rt.telemetry, rt.logger, &httpserver.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		MaxBatch:  cfg.Server.MaxBatch,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// reloadVocabulary swaps the engine lexicon on every successful reload.
func reloadVocabulary(ctx context.Context, rt *runtime, svc *analysis.Service, w *vocabulary.Watcher) {
	for ev := range w.Events() {
		if ev.Err != nil {
			rt.logger.Warn(ctx, "vocabulary reload failed, keeping current vocabulary", zap.Error(ev.Err))
			continue
		}
		if err := svc.SwapLexicon(ev.Lexicon); err != nil {
			rt.logger.Error(ctx, "failed to apply reloaded vocabulary", zap.Error(err))
			continue
		}
		rt.logger.Info(ctx, "vocabulary reloaded", zap.Time("at", ev.At))
	}
}
