package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
)

type Config struct {
	Port string `env:"PORT" envDefault:"5050"`

	// Storage backend: "memory", "postgres", "redis" or "sqlite"
	StorageBackend Backend `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string  `env:"DATABASE_URL"`
	RedisAddr      string  `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string  `env:"REDIS_PASSWORD"`
	RedisDB        int     `env:"REDIS_DB" envDefault:"0"`
	SQLitePath     string  `env:"SQLITE_PATH" envDefault:"data/demo.db"`

	Namespace        string        `env:"DEMO_NAMESPACE" envDefault:"midwifematch"`
	SimulatedLatency time.Duration `env:"SIMULATED_LATENCY" envDefault:"800ms"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`
	AuthRateLimit  float64  `env:"AUTH_RATE_LIMIT" envDefault:"2"`
	AuthRateBurst  int      `env:"AUTH_RATE_BURST" envDefault:"5"`
}

// Load reads .env.local (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.SimulatedLatency < 0 {
		return fmt.Errorf("SIMULATED_LATENCY must not be negative")
	}
	return nil
}
