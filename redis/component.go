package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/mindease/component"
	"github.com/kbukum/mindease/logger"
)

// Component manages a Client's lifecycle: Start pings, Stop closes.
type Component struct {
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps client. The client does not dial until first use, so
// stores can be built on it before Start.
func NewComponent(client *Client) *Component {
	return &Component{client: client}
}

// Client returns the wrapped client.
func (c *Component) Client() *Client { return c.client }

func (c *Component) Name() string { return "redis" }

// Start verifies the connection.
func (c *Component) Start(ctx context.Context) error {
	if err := c.client.Ping(ctx); err != nil {
		return fmt.Errorf("redis start ping: %w", err)
	}
	c.client.log.Info("redis connected", logger.Fields("addr", c.client.cfg.Addr))
	return nil
}

func (c *Component) Stop(context.Context) error {
	return c.client.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if err := c.client.Ping(ctx); err != nil {
		h.Status, h.Message = component.StatusUnhealthy, fmt.Sprintf("ping failed: %v", err)
	}
	return h
}

func (c *Component) Describe() component.Description {
	cfg := c.client.cfg
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d pool=%d prefix=%s", cfg.Addr, cfg.DB, cfg.PoolSize, cfg.KeyPrefix),
	}
}
