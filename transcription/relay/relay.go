// Package relay implements transcription.Provider against the MindEase
// proxy, which forwards audio to the configured speech-to-text service.
package relay

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

// ProviderName is the registered name for this backend.
const ProviderName = "relay"

// Config holds the proxy location.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3001"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// Provider posts audio to /transcribe and reads /transcription/:id.
type Provider struct {
	client *httpclient.Client
}

// NewProvider creates a Provider.
func NewProvider(cfg Config, opts ...httpclient.Option) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:           ProviderName,
		BaseURL:        cfg.URL,
		Timeout:        cfg.Timeout,
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
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

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) IsAvailable(ctx context.Context) bool {
	if !p.client.Available() {
		return false
	}
	resp, err := p.client.Do(ctx, httpclient.Request{Path: "/health"})
	return err == nil && resp.IsSuccess()
}

// TranscribeResponse is the proxy's answer to POST /transcribe.
type TranscribeResponse struct {
	TranscriptID string `json:"transcriptId"`
}

// StatusResponse is the proxy's answer to GET /transcription/:id.
type StatusResponse struct {
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (p *Provider) CreateJob(ctx context.Context, req transcription.AudioRequest) (string, error) {
	name := req.FileName
	if name == "" {
		name = "recording.webm"
	}
	body := &httpclient.MultipartBody{
		Files: []httpclient.FileField{{
			FieldName:   "audio",
			FileName:    name,
			ContentType: req.ContentType,
			Data:        req.Audio,
		}},
	}
	if req.Language != "" {
		body.Fields = map[string]string{"language": req.Language}
	}
	out, err := httpclient.PostJSON[TranscribeResponse](ctx, p.client, "/transcribe", body)
	if err != nil {
		return "", fmt.Errorf("relay: transcribe: %w", err)
	}
	if out.TranscriptID == "" {
		return "", errors.New("relay: response carried no transcriptId")
	}
	return out.TranscriptID, nil
}

func (p *Provider) GetJob(ctx context.Context, id string) (*transcription.Job, error) {
	out, err := httpclient.GetJSON[StatusResponse](ctx, p.client, "/transcription/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("relay: transcription %s: %w", id, err)
	}
	return &transcription.Job{
		ID:     id,
		Status: transcription.Status(out.Status),
		Text:   out.Text,
		Error:  out.Error,
	}, nil
}
