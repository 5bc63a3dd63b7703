// Package observability provides OpenTelemetry tracing and metrics for
// restclient.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("todo-app"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("todo-app"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter("restclient"))
//	metrics.RecordRequestEnd(ctx, "todos", "GET", 200, duration)
//
// The transport package wires both into its WithTracing and WithMetrics
// middleware.
package observability
