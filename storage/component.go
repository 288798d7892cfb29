package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/mindease/component"
)

// healthKey is probed by Start and Health; it need not exist.
const healthKey = ".health"

// Component reports a Storage to the lifecycle. The backend is created
// before the component so handlers can hold it from the start.
type Component struct {
	storage Storage
	cfg     Config
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(s Storage, cfg Config) *Component {
	return &Component{storage: s, cfg: cfg}
}

// Storage returns the wrapped backend.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

// Start fails when the backend cannot be reached.
func (c *Component) Start(ctx context.Context) error {
	if _, err := c.storage.Exists(ctx, healthKey); err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	return nil
}

func (c *Component) Stop(context.Context) error { return nil }

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if _, err := c.storage.Exists(ctx, healthKey); err != nil {
		h.Status, h.Message = component.StatusUnhealthy, fmt.Sprintf("probe failed: %v", err)
	}
	return h
}

func (c *Component) Describe() component.Description {
	details := "provider=" + c.cfg.Provider
	switch c.cfg.Provider {
	case ProviderLocal:
		details += " path=" + c.cfg.BasePath
	case ProviderS3:
		details += " bucket=" + c.cfg.Bucket
		if c.cfg.Endpoint != "" {
			details += " endpoint=" + c.cfg.Endpoint
		}
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
