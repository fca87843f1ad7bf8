package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr      string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath        string     `env:"DB_PATH" envDefault:"data/reveal.db"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	ExperienceDir string     `env:"EXPERIENCE_DIR" envDefault:"experiences"`
	SPADir        string     `env:"SPA_DIR" envDefault:"../web/dist"`
	// RedisURL enables the signal relay when set.
	RedisURL     string `env:"REDIS_URL"`
	SignalBuffer int    `env:"SIGNAL_BUFFER" envDefault:"256"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.SignalBuffer <= 0 {
		return nil, fmt.Errorf("SIGNAL_BUFFER must be positive, got %d", cfg.SignalBuffer)
	}
	return &cfg, nil
}
