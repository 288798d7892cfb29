// Package whisper runs transcriptions on a faster-whisper HTTP sidecar.
//
// The sidecar answers synchronously, so CreateJob stores a queued job,
// transcribes in the background, and GetJob reads the stored job back.
package whisper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/mindease/errors"
	"github.com/kbukum/mindease/httpclient"
	"github.com/kbukum/mindease/logger"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 120 * time.Second
	defaultJobTTL         = 24 * time.Hour

	jobKeyPrefix = "whisper_job:"
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// JobTTL bounds how long finished jobs stay readable.
	JobTTL time.Duration `yaml:"job_ttl" mapstructure:"job_ttl"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultWhisperTimeout
	}
	if c.JobTTL <= 0 {
		c.JobTTL = defaultJobTTL
	}
}

// Option customizes a Provider.
type Option func(*Provider)

// WithJobStore keeps jobs in store instead of process memory.
func WithJobStore(store provider.ContextStore[transcription.Job]) Option {
	return func(p *Provider) { p.jobs = store }
}

// WithHTTPClient replaces the sidecar transport.
func WithHTTPClient(opts ...httpclient.Option) Option {
	return func(p *Provider) { p.clientOpts = append(p.clientOpts, opts...) }
}

// WithLogger sets the logger for background work.
func WithLogger(l *logger.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// Provider implements transcription.Provider on a faster-whisper sidecar.
type Provider struct {
	cfg        Config
	client     *httpclient.Client
	clientOpts []httpclient.Option
	jobs       provider.ContextStore[transcription.Job]
	log        *logger.Logger

	// base is cancelled by Close; wg tracks running transcriptions. mu
	// orders wg.Add against Close.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewProvider creates a Whisper Provider.
func NewProvider(cfg Config, opts ...Option) (*Provider, error) {
	cfg.ApplyDefaults()
	p := &Provider{cfg: cfg, log: logger.Get(ProviderName)}
	for _, opt := range opts {
		opt(p)
	}
	if p.jobs == nil {
		p.jobs = provider.NewMemoryStore[transcription.Job]()
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
	}, p.clientOpts...)
	if err != nil {
		return nil, err
	}
	p.client = client
	p.base, p.cancel = context.WithCancel(context.Background())
	return p, nil
}

// Factory returns a provider.Factory that creates Whisper providers from
// configuration settings.
func Factory(opts ...Option) provider.Factory[transcription.Provider] {
	return func(settings map[string]any) (transcription.Provider, error) {
		cfg, err := provider.DecodeSettings[Config](settings)
		if err != nil {
			return nil, err
		}
		return NewProvider(cfg, opts...)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{Path: "/health"})
	return err == nil && resp.IsSuccess()
}

// CreateJob stores a queued job and starts transcribing in the background.
func (p *Provider) CreateJob(ctx context.Context, req transcription.AudioRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", apperrors.InvalidInput("audio", "must not be empty")
	}
	if p.isClosed() {
		return "", apperrors.ServiceUnavailable(ProviderName)
	}
	id := uuid.NewString()
	job := &transcription.Job{ID: id, Status: transcription.StatusQueued}
	if err := p.jobs.Save(ctx, jobKeyPrefix+id, job, p.cfg.JobTTL); err != nil {
		return "", fmt.Errorf("whisper: store job: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = p.jobs.Delete(context.WithoutCancel(ctx), jobKeyPrefix+id)
		return "", apperrors.ServiceUnavailable(ProviderName)
	}
	p.wg.Add(1)
	p.mu.Unlock()

	audio := append([]byte(nil), req.Audio...)
	go func() {
		defer p.wg.Done()
		p.run(id, audio, req)
	}()
	return id, nil
}

// GetJob reads a job back from the store.
func (p *Provider) GetJob(ctx context.Context, id string) (*transcription.Job, error) {
	job, err := p.jobs.Load(ctx, jobKeyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("whisper: load job: %w", err)
	}
	if job == nil {
		return nil, apperrors.NotFound("transcription job", id)
	}
	return job, nil
}

// Close stops accepting jobs, cancels running ones, and waits for them.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cancel()
	p.mu.Unlock()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.client.Close()
	return nil
}

func (p *Provider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Provider) run(id string, audio []byte, req transcription.AudioRequest) {
	ctx := p.base
	p.save(ctx, &transcription.Job{ID: id, Status: transcription.StatusProcessing})

	text, err := p.transcribe(ctx, audio, req)
	job := &transcription.Job{ID: id, Status: transcription.StatusCompleted, Text: text}
	if err != nil {
		job = &transcription.Job{ID: id, Status: transcription.StatusError, Error: err.Error()}
		p.log.Warn("whisper transcription failed", logger.Fields(
			logger.FieldJobID, id,
			logger.FieldError, err.Error(),
		))
	}
	// The job record must outlive a cancelled base context.
	p.save(context.WithoutCancel(ctx), job)
}

func (p *Provider) save(ctx context.Context, job *transcription.Job) {
	if err := p.jobs.Save(ctx, jobKeyPrefix+job.ID, job, p.cfg.JobTTL); err != nil {
		p.log.Error("whisper job not saved", logger.Fields(
			logger.FieldJobID, job.ID,
			logger.FieldError, err.Error(),
		))
	}
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (p *Provider) transcribe(ctx context.Context, audio []byte, req transcription.AudioRequest) (string, error) {
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	name := req.FileName
	if name == "" {
		name = "audio.webm"
	}
	body := &httpclient.MultipartBody{
		Fields: map[string]string{"model": p.cfg.Model},
		Files: []httpclient.FileField{{
			FieldName:   "audio",
			FileName:    name,
			ContentType: req.ContentType,
			Data:        audio,
		}},
	}
	if lang != "" {
		body.Fields["language"] = lang
	}
	resp, err := httpclient.PostJSON[whisperResponse](ctx, p.client, "/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("whisper request: %w", err)
	}
	return resp.Text, nil
}

var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Closeable     = (*Provider)(nil)
)
