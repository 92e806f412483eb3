package web

import (
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/web/handlers"
)

// Config represents the web server configuration
type Config struct {
	Server   ServerConfig
	Handlers handlers.Config
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// ConfigFrom derives the server configuration from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Server: ServerConfig{
			Host: cfg.HTTPHost,
			Port: cfg.HTTPPort,
		},
		Handlers: handlers.Config{
			AdultIntervalMonths:     cfg.RecallIntervalMonths,
			PediatricIntervalMonths: cfg.PediatricRecallIntervalMonths,
			PediatricThreshold:      cfg.PediatricThreshold,
		},
	}
}
