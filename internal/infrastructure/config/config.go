package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Import    ImportConfig    `yaml:"import" toml:"import"`
	Catalog   CatalogConfig   `yaml:"catalog" toml:"catalog"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" yaml:"host" toml:"host"`
}

// StorageConfig locates the database and the optional seed directory
type StorageConfig struct {
	Path    string `envconfig:"LAUNCHER_DB_PATH" default:"launcher.db" yaml:"path" toml:"path"`
	SeedDir string `envconfig:"LAUNCHER_SEED_DIR" yaml:"seed_dir" toml:"seed_dir"`
}

// ImportConfig holds import pipeline limits and remote endpoints
type ImportConfig struct {
	MaxArchiveBytes int64         `envconfig:"IMPORT_MAX_ARCHIVE_BYTES" default:"52428800" yaml:"max_archive_bytes" toml:"max_archive_bytes"`
	ProbeTimeout    time.Duration `envconfig:"IMPORT_PROBE_TIMEOUT" default:"5s" yaml:"probe_timeout" toml:"-"`
	GitHubAPI       string        `envconfig:"GITHUB_API_URL" default:"https://api.github.com" yaml:"github_api" toml:"github_api"`
	GitHubToken     string        `envconfig:"GITHUB_TOKEN" yaml:"github_token" toml:"github_token"`
	FaviconService  string        `envconfig:"FAVICON_SERVICE" default:"https://www.google.com/s2/favicons?domain=%s&sz=64" yaml:"favicon_service" toml:"favicon_service"`
	MaxRetries      int           `envconfig:"IMPORT_MAX_RETRIES" default:"2" yaml:"max_retries" toml:"max_retries"`
}

// CatalogConfig holds catalog presentation settings
type CatalogConfig struct {
	Locale       string        `envconfig:"CATALOG_LOCALE" default:"en" yaml:"locale" toml:"locale"`
	RecentWindow time.Duration `envconfig:"CATALOG_RECENT_WINDOW" default:"720h" yaml:"recent_window" toml:"-"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile overlays a YAML or TOML file on the defaults; the format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = loadTOML(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// tomlDurations carries the duration fields, which TOML files spell as
// strings like "5s"
type tomlDurations struct {
	Import struct {
		ProbeTimeout string `toml:"probe_timeout"`
	} `toml:"import"`
	Catalog struct {
		RecentWindow string `toml:"recent_window"`
	} `toml:"catalog"`
}

func loadTOML(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	var d tomlDurations
	if err := toml.Unmarshal(data, &d); err != nil {
		return err
	}
	for _, f := range []struct {
		raw string
		dst *time.Duration
	}{
		{d.Import.ProbeTimeout, &cfg.Import.ProbeTimeout},
		{d.Catalog.RecentWindow, &cfg.Catalog.RecentWindow},
	} {
		if f.raw == "" {
			continue
		}
		v, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			Path: "launcher.db",
		},
		Import: ImportConfig{
			MaxArchiveBytes: 50 * 1024 * 1024,
			ProbeTimeout:    5 * time.Second,
			GitHubAPI:       "https://api.github.com",
			FaviconService:  "https://www.google.com/s2/favicons?domain=%s&sz=64",
			MaxRetries:      2,
		},
		Catalog: CatalogConfig{
			Locale:       "en",
			RecentWindow: 30 * 24 * time.Hour,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
