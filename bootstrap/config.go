package bootstrap

import "github.com/kbukum/mindease/config"

// Config constrains the App's config type. Any struct embedding
// config.ServiceConfig satisfies it through promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
