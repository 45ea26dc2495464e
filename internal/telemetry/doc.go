// Package telemetry wires OpenTelemetry tracing and metrics for habitlens.
//
// Traces and metrics are exported over OTLP (grpc or http/protobuf) to a
// collector. When telemetry is disabled, Tracer and Meter return the global
// no-op implementations, so instrumented code needs no nil checks.
//
//	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Observability, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx, span := tel.Tracer("habitlens.analysis").Start(ctx, "habitlens.analyze")
//	defer span.End()
//
// Failures while building exporters degrade the instance instead of failing
// startup; Health reports the state.
//
// Tests use NewTestTelemetry, which records spans and metrics in memory.
package telemetry
