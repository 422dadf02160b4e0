package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings read from CASTAWAY_* environment variables
type Config struct {
	Port          int    `env:"PORT" envDefault:"8081"`
	DBPath        string `env:"DB_PATH" envDefault:"castaway.db"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	RecalcWorkers int    `env:"RECALC_WORKERS" envDefault:"4"`
	BaseURL       string `env:"BASE_URL"`
	HTTPLogging   bool   `env:"HTTP_LOGGING" envDefault:"false"`
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "CASTAWAY_"})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.RecalcWorkers < 1 {
		cfg.RecalcWorkers = 1
	}
	return &cfg, nil
}

// Addr returns the listen address for the configured port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
