package provider

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Provider is the base interface every swappable backend implements.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// Closeable is implemented by providers that hold resources.
type Closeable interface {
	Close(ctx context.Context) error
}

// Factory creates a provider from loosely typed settings, usually a
// sub-tree of the service's YAML configuration.
type Factory[T Provider] func(settings map[string]any) (T, error)

// DecodeSettings decodes factory settings into a typed config. Strings
// such as "30s" decode into time.Duration fields.
func DecodeSettings[C any](settings map[string]any) (C, error) {
	var cfg C
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		TagName:          "mapstructure",
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(settings); err != nil {
		return cfg, fmt.Errorf("provider: decode settings: %w", err)
	}
	return cfg, nil
}
