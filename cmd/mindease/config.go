package main

import (
	"fmt"

	"github.com/kbukum/mindease/companion"
	"github.com/kbukum/mindease/config"
	"github.com/kbukum/mindease/journal"
	"github.com/kbukum/mindease/observability"
	"github.com/kbukum/mindease/proxy"
	"github.com/kbukum/mindease/redis"
	"github.com/kbukum/mindease/server"
	"github.com/kbukum/mindease/storage"
	"github.com/kbukum/mindease/transcription"
	"github.com/kbukum/mindease/validation"
)

const serviceName = "mindease"

// AppConfig is the full configuration of the mindease binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Journal       journal.Config       `yaml:"journal" mapstructure:"journal"`
	Companion     companion.Config     `yaml:"companion" mapstructure:"companion"`
	Proxy         proxy.Config         `yaml:"proxy" mapstructure:"proxy"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Journal.ApplyDefaults()
	c.Companion.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if c.Storage.Enabled {
		if err := c.Storage.Validate(); err != nil {
			return err
		}
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if err := validation.Validate(&c.Companion); err != nil {
		return fmt.Errorf("companion: %w", err)
	}
	if err := validation.Validate(&c.Proxy); err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	if c.Observability.Enabled {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("observability: %w", err)
		}
	}
	return nil
}

// loadConfig reads config.yml, .env and the environment. Backend secrets
// live under a map, so their variables are bound explicitly.
func loadConfig(configFile, envFile string) (*AppConfig, error) {
	var cfg AppConfig
	opts := []config.LoaderOption{
		config.WithEnvBinding("transcription.providers.assemblyai.api_key", "ASSEMBLYAI_API_KEY", "TRANSCRIPTION_ASSEMBLYAI_API_KEY"),
		config.WithEnvBinding("transcription.providers.relay.url", "MINDEASE_PROXY_URL"),
		config.WithEnvBinding("transcription.providers.whisper.url", "WHISPER_URL"),
	}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
