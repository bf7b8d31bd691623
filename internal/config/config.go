// Package config loads server configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all server settings.
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode     string `env:"GIN_MODE" envDefault:"debug"`
	AllowOrigin string `env:"ALLOW_ORIGIN" envDefault:"*"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SessionURL returns the shareable join URL for a session.
func (c *Config) SessionURL(sessionID string) string {
	return fmt.Sprintf("%s/interview/%s", c.BaseURL, sessionID)
}
