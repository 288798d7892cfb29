// Package assemblyai implements transcription.Provider on the AssemblyAI
// v2 REST API: audio is uploaded, a transcript job is created from the
// upload URL, and the job is fetched by id.
package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/mindease/httpclient"
	"github.com/kbukum/mindease/provider"
	"github.com/kbukum/mindease/transcription"
)

const (
	// ProviderName is the registered name for this backend.
	ProviderName = "assemblyai"

	defaultBaseURL = "https://api.assemblyai.com/v2"
	defaultTimeout = 60 * time.Second
)

// Config holds the AssemblyAI settings.
type Config struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// LanguageCode is sent when the request carries no language hint.
	LanguageCode string `yaml:"language_code" mapstructure:"language_code"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("assemblyai: api_key is required")
	}
	return nil
}

// Provider talks to AssemblyAI.
type Provider struct {
	cfg Config
	// upload retries transient failures; api never does, so a job is
	// created at most once per CreateJob.
	upload *httpclient.Client
	api    *httpclient.Client
}

// NewProvider creates a Provider. The options are passed to both
// underlying HTTP clients.
func NewProvider(cfg Config, opts ...httpclient.Option) (*Provider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := httpclient.Config{
		Name:           ProviderName,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		Auth:           httpclient.APIKeyHeader(cfg.APIKey, "authorization"),
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
	}
	api, err := httpclient.New(base, opts...)
	if err != nil {
		return nil, err
	}
	uploadCfg := base
	uploadCfg.Name = ProviderName + "-upload"
	uploadCfg.CircuitBreaker = nil
	uploadCfg.Retry = httpclient.DefaultRetryConfig()
	upload, err := httpclient.New(uploadCfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, upload: upload, api: api}, nil
}

// Factory builds Providers from configuration settings.
func Factory(opts ...httpclient.Option) provider.Factory[transcription.Provider] {
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

// IsAvailable reports false while the API circuit breaker is open.
func (p *Provider) IsAvailable(context.Context) bool { return p.api.Available() }

// Close releases idle connections.
func (p *Provider) Close(context.Context) error {
	p.api.Close()
	p.upload.Close()
	return nil
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL     string `json:"audio_url"`
	LanguageCode string `json:"language_code,omitempty"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// CreateJob uploads the audio and creates a transcript job.
func (p *Provider) CreateJob(ctx context.Context, req transcription.AudioRequest) (string, error) {
	if len(req.Audio) == 0 {
		return "", httpclient.NewValidationError("assemblyai: empty audio")
	}
	up, err := httpclient.PostJSON[uploadResponse](ctx, p.upload, "/upload", req.Audio,
		httpclient.WithHeader("Content-Type", "application/octet-stream"))
	if err != nil {
		return "", fmt.Errorf("assemblyai: upload: %w", err)
	}
	if up.UploadURL == "" {
		return "", errors.New("assemblyai: upload returned no upload_url")
	}

	lang := req.Language
	if lang == "" {
		lang = p.cfg.LanguageCode
	}
	tr, err := httpclient.PostJSON[transcriptResponse](ctx, p.api, "/transcript",
		transcriptRequest{AudioURL: up.UploadURL, LanguageCode: lang})
	if err != nil {
		return "", fmt.Errorf("assemblyai: create transcript: %w", err)
	}
	if tr.ID == "" {
		return "", errors.New("assemblyai: create transcript returned no id")
	}
	return tr.ID, nil
}

// GetJob fetches a transcript job. AssemblyAI's statuses already match
// transcription.Status.
func (p *Provider) GetJob(ctx context.Context, id string) (*transcription.Job, error) {
	tr, err := httpclient.GetJSON[transcriptResponse](ctx, p.api, "/transcript/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("assemblyai: get transcript %s: %w", id, err)
	}
	if tr.ID == "" {
		tr.ID = id
	}
	return &transcription.Job{
		ID:     tr.ID,
		Status: transcription.Status(tr.Status),
		Text:   tr.Text,
		Error:  tr.Error,
	}, nil
}

var _ transcription.Provider = (*Provider)(nil)
var _ provider.Closeable = (*Provider)(nil)
