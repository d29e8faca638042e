package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the migrator.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (PGPASSWORD) must only come from environment variables.
type Config struct {
	// Env selects the logging profile ("local" uses a development logger).
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// DumpPath is the legacy dump file to migrate from.
	DumpPath string `yaml:"dump_path" env:"DUMP_PATH" env-default:"legacy_dump.sql"`

	// IdentityMapPath is the persisted legacy-ID to surrogate-ID document
	// shared between passes.
	IdentityMapPath string `yaml:"identity_map_path" env:"IDENTITY_MAP_PATH" env-default:"identity-map.json"`

	// MigrationsPath is the directory of destination schema migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Kinds restricts a pass to a comma-separated subset of entity kinds.
	// Empty means all kinds, in dependency order.
	Kinds string `yaml:"kinds" env:"MIGRATE_KINDS" env-default:""`

	// Database configuration for the destination store (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds destination PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"shoplink"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"shoplink"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"5"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error: the migrator is often
// run from environment variables alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	return cfg, nil
}

// KindList returns the configured kind names, or nil when all kinds run.
func (c *Config) KindList() []string {
	if strings.TrimSpace(c.Kinds) == "" {
		return nil
	}
	var kinds []string
	for _, k := range strings.Split(c.Kinds, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
