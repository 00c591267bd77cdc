// Package observability provides OpenTelemetry tracing and metrics for
// document-store requests.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter("cradle"))
//	client, err := httpclient.New(cfg, httpclient.WithMetrics(metrics))
//
// Without InitTracer/InitMeter the global no-op providers are used, so spans
// and instruments cost nothing.
package observability
