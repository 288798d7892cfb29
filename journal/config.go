package journal

import (
	"time"

	"github.com/kbukum/mindease/validation"
)

// Config tunes the poll chain.
type Config struct {
	// PollInterval separates consecutive status queries of one job.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval" validate:"gte=0"`
	// FirstPollDelay is the wait between job creation and the first query.
	FirstPollDelay time.Duration `yaml:"first_poll_delay" mapstructure:"first_poll_delay" validate:"gte=0"`
	// MaxPolls fails a job as timed out after this many queries without a
	// verdict.
	MaxPolls int `yaml:"max_polls" mapstructure:"max_polls" validate:"gte=0"`
	// PollTimeout bounds a single status query.
	PollTimeout time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout" validate:"gte=0"`
	// ArchiveTTL expires archived transcripts; 0 keeps them.
	ArchiveTTL time.Duration `yaml:"archive_ttl" mapstructure:"archive_ttl" validate:"gte=0"`
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.MaxPolls == 0 {
		c.MaxPolls = 200
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
