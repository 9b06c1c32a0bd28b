// Package config содержит логику чтения конфигурации сервиса возвратов.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultShutdownTimeout = 5 * time.Second
)

// Config содержит параметры конфигурации сервиса возвратов.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	SeedOnStart     bool          `env:"SEED_ON_START"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envShutdownTimeout := cfg.ShutdownTimeout
	envSeedOnStart := cfg.SeedOnStart
	_, seedSet := os.LookupEnv("SEED_ON_START")

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.BoolVar(&cfg.SeedOnStart, "s", false, "seed demo refunds on start")
	flag.DurationVar(&cfg.ShutdownTimeout, "t", defaultShutdownTimeout, "graceful shutdown timeout")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envShutdownTimeout != 0 {
		cfg.ShutdownTimeout = envShutdownTimeout
	}
	if seedSet {
		cfg.SeedOnStart = envSeedOnStart
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	return cfg, nil
}
