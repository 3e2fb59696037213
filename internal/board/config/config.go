// Package config loads the board service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gartstein/staffboard/internal/board/db"
	"github.com/gartstein/staffboard/internal/board/models"
	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable that overrides DefaultPath.
const PathEnv = "CONFIG_PATH"

// DefaultPath is where the service looks for its configuration.
var DefaultPath = filepath.Join("internal", "board", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	SQLitePath string `yaml:"SQLITE_PATH"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`

	JWTSecret string `yaml:"JWT_SECRET"`

	// RandomSeed seeds auto-reorganize. Zero draws a fresh seed per start.
	RandomSeed uint64 `yaml:"RANDOM_SEED"`
	// ZoneCapacity overrides the built-in capacity of individual zones.
	ZoneCapacity map[string]int `yaml:"ZONE_CAPACITY"`
}

// Load reads the configuration from the CONFIG_PATH environment variable,
// falling back to DefaultPath.
func Load() (*Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile reads, validates and normalizes the configuration at path.
// JWT_SECRET and DB_PASSWORD may be overridden from the environment.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DBPassword = v
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.GRPCPort == 0 {
		c.GRPCPort = 50051
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("config: GRPC_PORT and HTTP_PORT must differ")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must be set")
	}

	c.DBDriver = strings.ToLower(c.DBDriver)
	switch c.DBDriver {
	case "", "postgres":
		c.DBDriver = "postgres"
		if c.DBHost == "" {
			return fmt.Errorf("config: DB_HOST must be set")
		}
		if c.DBPort == 0 {
			c.DBPort = 5432
		}
		if c.DBName == "" {
			return fmt.Errorf("config: DB_NAME must be set")
		}
		if c.DBSSLMode == "" {
			c.DBSSLMode = "disable"
		}
	case "sqlite":
		if c.SQLitePath == "" {
			c.SQLitePath = "staffboard.db"
		}
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}

	if len(c.KafkaBrokers) > 0 && c.Topic == "" {
		c.Topic = "staffboard.refresh"
	}

	for zone, capacity := range c.ZoneCapacity {
		if !models.ZoneID(zone).Valid() {
			return fmt.Errorf("config: ZONE_CAPACITY: unknown zone %q", zone)
		}
		if capacity <= 0 {
			return fmt.Errorf("config: ZONE_CAPACITY: %s must be positive, got %d", zone, capacity)
		}
	}
	return nil
}

// Database returns the repository configuration.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Driver:     c.DBDriver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

// Capacities returns the zone capacity overrides keyed by zone.
func (c *Config) Capacities() map[models.ZoneID]int {
	out := make(map[models.ZoneID]int, len(c.ZoneCapacity))
	for zone, capacity := range c.ZoneCapacity {
		out[models.ZoneID(zone)] = capacity
	}
	return out
}
