package transcription

import "github.com/kbukum/mindease/provider"

// NewRegistry creates an empty registry for transcription backends.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// Config selects a backend and carries per-backend settings keyed by
// backend name.
type Config struct {
	Provider  string                    `yaml:"provider" mapstructure:"provider"`
	Providers map[string]map[string]any `yaml:"providers" mapstructure:"providers"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "assemblyai"
	}
}

// Build creates the configured backend from reg.
func Build(reg *provider.Registry[Provider], cfg Config) (Provider, error) {
	cfg.ApplyDefaults()
	return reg.Create(cfg.Provider, cfg.Providers[cfg.Provider])
}
