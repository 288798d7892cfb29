// Package observability wires OpenTelemetry tracing and metrics.
//
// InitTracer and InitMeter install global providers that export over
// OTLP/HTTP; until they run, StartSpan and Metrics are no-ops. Metrics
// methods accept a nil receiver so components can run without metrics.
package observability
