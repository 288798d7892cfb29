package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/mindease/logger"
)

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
func InitMeter(ctx context.Context, cfg Config, svc Service) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	res, err := newResource(svc)
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricsInterval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.MetricsInterval.String(),
	))
	return mp, nil
}

// Metrics holds the instruments MindEase records.
type Metrics struct {
	providerCalls    metric.Int64Counter
	providerDuration metric.Float64Histogram
	transitions      metric.Int64Counter
	polls            metric.Int64Counter
	intents          metric.Int64Counter
	httpRequests     metric.Int64Counter
	httpDuration     metric.Float64Histogram
}

// NewMetrics creates the instruments on meter. A nil meter uses the global
// provider, which is a no-op until InitMeter runs.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	m := &Metrics{}
	var err error
	if m.providerCalls, err = meter.Int64Counter("transcription.provider.calls",
		metric.WithDescription("Calls to the speech-to-text provider")); err != nil {
		return nil, err
	}
	if m.providerDuration, err = meter.Float64Histogram("transcription.provider.duration",
		metric.WithDescription("Provider call latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.transitions, err = meter.Int64Counter("journal.recording.transitions",
		metric.WithDescription("Recording state transitions")); err != nil {
		return nil, err
	}
	if m.polls, err = meter.Int64Counter("journal.polls",
		metric.WithDescription("Transcription status polls by outcome")); err != nil {
		return nil, err
	}
	if m.intents, err = meter.Int64Counter("companion.intents",
		metric.WithDescription("Classified companion messages by intent")); err != nil {
		return nil, err
	}
	if m.httpRequests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, err
	}
	if m.httpDuration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordProviderCall records one provider operation.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider, op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", op),
		attribute.String("status", status(err)),
	)
	m.providerCalls.Add(ctx, 1, attrs)
	m.providerDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordTransition counts a recording moving into state to.
func (m *Metrics) RecordTransition(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

// RecordPoll counts a poll by outcome (in_progress, completed, failed,
// transport_error).
func (m *Metrics) RecordPoll(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordIntent counts a classified message.
func (m *Metrics) RecordIntent(ctx context.Context, intent string) {
	if m == nil {
		return
	}
	m.intents.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent)))
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.httpRequests.Add(ctx, 1, attrs)
	m.httpDuration.Record(ctx, d.Seconds(), attrs)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
