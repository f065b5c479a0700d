package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every configuration variable.
const EnvPrefix = "SHIPTRACKER_"

// Config is the process configuration, read from SHIPTRACKER_* variables.
type Config struct {
	DBPath string `env:"DB_PATH" envDefault:"shiptracker.db"`
	// War is the active war id; 0 means none is configured.
	War          int64         `env:"WAR" envDefault:"0"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	AuthRolesTTL       time.Duration `env:"AUTH_ROLES_TTL" envDefault:"5m"`
	AuthUsersTTL       time.Duration `env:"AUTH_USERS_TTL" envDefault:"1m"`
	AuthPresenceTTL    time.Duration `env:"AUTH_PRESENCE_TTL" envDefault:"1m"`
	CacheSweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" envDefault:"1m"`
	CacheMaxEntries    int           `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	SeedPath     string `env:"SEED_PATH"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadConfig reads configuration from the environment after loading
// dir/.env, if present. Variables already set in the environment win over
// the file.
func LoadConfig(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return ParseEnv()
}

// ParseEnv reads configuration from the environment only.
func ParseEnv() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%sDB_PATH must not be empty", EnvPrefix)
	}
	if c.War < 0 {
		return fmt.Errorf("%sWAR must not be negative, got %d", EnvPrefix, c.War)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("%sSTORE_TIMEOUT must be positive, got %s", EnvPrefix, c.StoreTimeout)
	}
	for name, ttl := range map[string]time.Duration{
		"AUTH_ROLES_TTL":    c.AuthRolesTTL,
		"AUTH_USERS_TTL":    c.AuthUsersTTL,
		"AUTH_PRESENCE_TTL": c.AuthPresenceTTL,
	} {
		if ttl < 0 {
			return fmt.Errorf("%s%s must not be negative (0 disables the cache), got %s", EnvPrefix, name, ttl)
		}
	}
	return nil
}
