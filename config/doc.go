// Package config loads service configuration with viper.
//
// LoadConfig looks for ./cmd/<service>/config.yml (and a few parent
// directories), applies an optional .env file through godotenv, and lets
// environment variables override any key:
//
//	var cfg AppConfig
//	if err := config.LoadConfig("mindease", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Config structs follow the ApplyDefaults/Validate convention used by
// every package in this module.
package config
