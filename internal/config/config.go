package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/capture.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	RoundLimit int           `env:"ROUND_LIMIT" envDefault:"100"`
	TickDelay  time.Duration `env:"TICK_DELAY" envDefault:"500ms"`
	// Seed fixes the root of all match randomness. Zero draws a crypto seed.
	Seed uint64 `env:"SEED" envDefault:"0"`

	RedisURL   string `env:"REDIS_URL"`
	AdminToken string `env:"ADMIN_TOKEN"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.RoundLimit <= 0 {
		return nil, fmt.Errorf("ROUND_LIMIT must be positive, got %d", cfg.RoundLimit)
	}
	if cfg.TickDelay <= 0 {
		return nil, fmt.Errorf("TICK_DELAY must be positive, got %s", cfg.TickDelay)
	}
	return &cfg, nil
}
