package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/mindease/companion"
	"github.com/kbukum/mindease/component"
	"github.com/kbukum/mindease/journal"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/observability"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/redis"
	"github.com/kbukum/mindease/storage"
	_ "github.com/kbukum/mindease/storage/local"
	_ "github.com/kbukum/mindease/storage/s3"
	"github.com/kbukum/mindease/transcription"
	"github.com/kbukum/mindease/transcription/assemblyai"
	"github.com/kbukum/mindease/transcription/relay"
	"github.com/kbukum/mindease/transcription/whisper"
)

// runtime holds the wired dependencies shared by the commands.
type runtime struct {
	cfg     *AppConfig
	log     *logger.Logger
	metrics *observability.Metrics

	redis       *redis.Client
	histories   provider.ContextStore[companion.History]
	archive     provider.ContextStore[journal.Archive]
	transcripts provider.ContextStore[transcription.Job]
	jobs        provider.ContextStore[transcription.Job]
	audio       storage.Storage

	backend  transcription.Provider
	provider transcription.Provider

	components []component.Component
}

// newRuntime builds the stores and, when withTranscription is set, the
// transcription backend. Nothing dials until the components start.
func newRuntime(cfg *AppConfig, log *logger.Logger, withTranscription bool) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	rt.metrics = metrics
	if cfg.Observability.Enabled {
		rt.components = append(rt.components, rt.observabilityComponent())
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(cfg.Redis, log.WithComponent("redis"))
		if err != nil {
			return nil, err
		}
		rt.redis = client
		rt.histories = redis.NewTypedStore[companion.History](client)
		rt.archive = redis.NewTypedStore[journal.Archive](client)
		rt.transcripts = redis.NewTypedStore[transcription.Job](client)
		rt.jobs = redis.NewTypedStore[transcription.Job](client)
		rt.components = append(rt.components, redis.NewComponent(client))
	} else {
		rt.histories = provider.NewMemoryStore[companion.History]()
		rt.archive = provider.NewMemoryStore[journal.Archive]()
		rt.transcripts = provider.NewMemoryStore[transcription.Job]()
		rt.jobs = provider.NewMemoryStore[transcription.Job]()
	}

	if cfg.Storage.Enabled {
		audio, err := storage.New(context.Background(), cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		rt.audio = audio
		rt.components = append(rt.components, storage.NewComponent(audio, cfg.Storage))
	}

	if withTranscription {
		if err := rt.buildTranscription(); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime) buildTranscription() error {
	backend, err := transcription.Build(rt.transcriptionRegistry(), rt.cfg.Transcription)
	if err != nil {
		return fmt.Errorf("transcription backend %q: %w", rt.cfg.Transcription.Provider, err)
	}
	rt.backend = backend
	rt.provider = transcription.Chain(backend,
		transcription.WithLogging(rt.log.WithComponent("transcription")),
		transcription.WithTracing(),
		transcription.WithMetrics(rt.metrics),
	)
	rt.components = append(rt.components, rt.transcriptionComponent())
	return nil
}

func (rt *runtime) transcriptionRegistry() *provider.Registry[transcription.Provider] {
	reg := transcription.NewRegistry()
	reg.RegisterFactory(assemblyai.ProviderName, assemblyai.Factory())
	reg.RegisterFactory(relay.ProviderName, relay.Factory())
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(
		whisper.WithJobStore(rt.jobs),
		whisper.WithLogger(rt.log.WithComponent("whisper")),
	))
	return reg
}

func (rt *runtime) transcriptionComponent() component.Component {
	return &component.Func{
		ComponentName: "transcription",
		Info: component.Description{
			Name:    "Transcription",
			Type:    "transcription",
			Details: rt.backend.Name(),
		},
		StopFn: func(ctx context.Context) error {
			if c, ok := rt.backend.(provider.Closeable); ok {
				return c.Close(ctx)
			}
			return nil
		},
		HealthFn: func(ctx context.Context) error {
			if !rt.backend.IsAvailable(ctx) {
				return errors.New(rt.backend.Name() + " unavailable")
			}
			return nil
		},
	}
}

func (rt *runtime) observabilityComponent() component.Component {
	var shutdown []func(context.Context) error
	svc := observability.Service{
		Name:        rt.cfg.Name,
		Version:     rt.cfg.Version,
		Environment: rt.cfg.Environment,
	}
	return &component.Func{
		ComponentName: "observability",
		Info: component.Description{
			Name:    "OpenTelemetry",
			Type:    "observability",
			Details: "otlp/http " + rt.cfg.Observability.Endpoint,
		},
		StartFn: func(ctx context.Context) error {
			tp, err := observability.InitTracer(ctx, rt.cfg.Observability, svc)
			if err != nil {
				return err
			}
			mp, err := observability.InitMeter(ctx, rt.cfg.Observability, svc)
			if err != nil {
				_ = tp.Shutdown(ctx)
				return err
			}
			shutdown = append(shutdown, mp.Shutdown, tp.Shutdown)
			return nil
		},
		StopFn: func(ctx context.Context) error {
			var errs []error
			for _, fn := range shutdown {
				errs = append(errs, fn(ctx))
			}
			return errors.Join(errs...)
		},
	}
}

func (rt *runtime) newCompanion() *companion.Companion {
	return companion.New(rt.histories, rt.cfg.Companion,
		companion.WithLogger(rt.log.WithComponent("companion")),
		companion.WithMetrics(rt.metrics),
	)
}

func (rt *runtime) newController() *journal.Controller {
	return journal.NewController(rt.provider, rt.cfg.Journal,
		journal.WithLogger(rt.log.WithComponent("journal")),
		journal.WithMetrics(rt.metrics),
		journal.WithArchive(rt.archive),
	)
}
