package transcription

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
)

// Middleware wraps a Provider.
type Middleware func(Provider) Provider

// Chain applies middlewares so the first one is outermost.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// wrapped forwards everything to next; decorators override what they need.
type wrapped struct {
	next Provider
}

func (w wrapped) Name() string                         { return w.next.Name() }
func (w wrapped) IsAvailable(ctx context.Context) bool { return w.next.IsAvailable(ctx) }

// WithLogging logs every call at debug level and failures at warn.
func WithLogging(log *logger.Logger) Middleware {
	return func(next Provider) Provider {
		return &loggingProvider{wrapped{next}, log.WithFields(logger.Fields(logger.FieldProvider, next.Name()))}
	}
}

type loggingProvider struct {
	wrapped
	log *logger.Logger
}

func (p *loggingProvider) CreateJob(ctx context.Context, req AudioRequest) (string, error) {
	start := time.Now()
	id, err := p.next.CreateJob(ctx, req)
	fields := logger.DurationFields("create_job", time.Since(start))
	fields["bytes"] = len(req.Audio)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		p.log.WithContext(ctx).Warn("create job failed", fields)
		return "", err
	}
	fields[logger.FieldJobID] = id
	p.log.WithContext(ctx).Debug("job created", fields)
	return id, nil
}

func (p *loggingProvider) GetJob(ctx context.Context, id string) (*Job, error) {
	start := time.Now()
	job, err := p.next.GetJob(ctx, id)
	fields := logger.DurationFields("get_job", time.Since(start))
	fields[logger.FieldJobID] = id
	if err != nil {
		fields[logger.FieldError] = err.Error()
		p.log.WithContext(ctx).Warn("get job failed", fields)
		return nil, err
	}
	fields[logger.FieldStatus] = string(job.Status)
	p.log.WithContext(ctx).Debug("job fetched", fields)
	return job, nil
}

// WithTracing opens a span around every call.
func WithTracing() Middleware {
	return func(next Provider) Provider {
		return &tracingProvider{wrapped{next}}
	}
}

type tracingProvider struct{ wrapped }

func (p *tracingProvider) CreateJob(ctx context.Context, req AudioRequest) (string, error) {
	ctx, span := observability.StartSpan(ctx, "transcription.create_job",
		attribute.String(observability.AttrProvider, p.next.Name()),
		attribute.Int("audio.bytes", len(req.Audio)),
	)
	id, err := p.next.CreateJob(ctx, req)
	if err == nil {
		span.SetAttributes(attribute.String(observability.AttrJobID, id))
	}
	observability.EndSpan(span, err)
	return id, err
}

func (p *tracingProvider) GetJob(ctx context.Context, id string) (*Job, error) {
	ctx, span := observability.StartSpan(ctx, "transcription.get_job",
		attribute.String(observability.AttrProvider, p.next.Name()),
		attribute.String(observability.AttrJobID, id),
	)
	job, err := p.next.GetJob(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.String(observability.AttrJobStatus, string(job.Status)))
	}
	observability.EndSpan(span, err)
	return job, err
}

// WithMetrics records call counts and latency.
func WithMetrics(m *observability.Metrics) Middleware {
	return func(next Provider) Provider {
		return &metricsProvider{wrapped{next}, m}
	}
}

type metricsProvider struct {
	wrapped
	metrics *observability.Metrics
}

func (p *metricsProvider) CreateJob(ctx context.Context, req AudioRequest) (string, error) {
	start := time.Now()
	id, err := p.next.CreateJob(ctx, req)
	p.metrics.RecordProviderCall(ctx, p.next.Name(), "create_job", err, time.Since(start))
	return id, err
}

func (p *metricsProvider) GetJob(ctx context.Context, id string) (*Job, error) {
	start := time.Now()
	job, err := p.next.GetJob(ctx, id)
	p.metrics.RecordProviderCall(ctx, p.next.Name(), "get_job", err, time.Since(start))
	return job, err
}
