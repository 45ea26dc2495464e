// Package logging provides structured logging with OpenTelemetry integration.
//
// Logger wraps Zap with:
//   - a Trace level (-2, below Debug) for per-record extraction detail
//   - a console stream (stdout or stderr) teed with the OTEL log bridge
//   - context fields for the active span, the analyzed subject and the request
//   - redaction of free-text user content and credentials
//   - per-level sampling (errors are never sampled)
//
// # Usage
//
//	cfg, err := logging.FromConfig(appCfg.Logging, "habitlens")
//	if err != nil {
//	    return err
//	}
//	logger, err := logging.NewLogger(cfg, otelProvider)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithSubjectID(ctx, doc.SubjectID())
//	logger.Info(ctx, "analysis complete", zap.Int("patterns", n))
//
// Memory content and progress notes are never logged verbatim. Fields named
// content, notes or note are masked by the encoder.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	svc := analysis.NewService(engine, analysis.WithLogger(tl.Logger))
//	tl.AssertLogged(t, zapcore.InfoLevel, "analysis complete")
package logging
