// Package config provides configuration loading, validation, and hot reload
// for the preview server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Site    SiteConfig    `yaml:"site"`
	Cache   CacheConfig   `yaml:"cache"`
	Publish PublishConfig `yaml:"publish"`
	Content ContentConfig `yaml:"content"`
	Theme   ThemeConfig   `yaml:"theme"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// SiteConfig points at the site being edited.
type SiteConfig struct {
	ID         string `yaml:"id"`
	SchemaPath string `yaml:"schema_path"`
	DataPath   string `yaml:"data_path"`
	Page       string `yaml:"page,omitempty"` // page scope for the section picker
}

// CacheConfig configures patch persistence.
type CacheConfig struct {
	Path string `yaml:"path"` // SQLite file; empty disables durable caching
}

// PublishConfig configures the snapshot store publishes go to.
type PublishConfig struct {
	Path string `yaml:"path"` // SQLite file; empty publishes in memory only
}

// ContentConfig configures the blog content API client.
type ContentConfig struct {
	BaseURL string        `yaml:"base_url"`
	TTL     time.Duration `yaml:"ttl"`
}

// ThemeConfig selects the render theme.
type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Load reads configuration from a YAML file. Environment variables inside
// the file are expanded, then SITEPREVIEW_* variables override individual
// fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables,
// for container deployments where no config file is mounted.
//
// Environment variables:
//
//	SITEPREVIEW_SITE_ID         - Site identifier (cache key scope)
//	SITEPREVIEW_SCHEMA_PATH     - Site schema file (required)
//	SITEPREVIEW_DATA_PATH       - Baseline site document (required)
//	SITEPREVIEW_SERVER_HOST     - Server host (default: 0.0.0.0)
//	SITEPREVIEW_SERVER_PORT     - Server port (default: 8080)
//	SITEPREVIEW_CACHE_PATH      - Patch cache SQLite file
//	SITEPREVIEW_PUBLISH_PATH    - Snapshot SQLite file
//	SITEPREVIEW_CONTENT_URL     - Blog content API base URL
//	SITEPREVIEW_THEME           - Theme name
//	SITEPREVIEW_THEME_VARIANT   - Theme variant
//	SITEPREVIEW_LOG_LEVEL       - Log level (default: info)
//	SITEPREVIEW_LOG_FORMAT      - Log format: json or console (default: json)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback tries to load from file, falling back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	if os.Getenv("SITEPREVIEW_SCHEMA_PATH") != "" {
		return LoadFromEnv()
	}
	return nil, fmt.Errorf("config: no config file at %q and SITEPREVIEW_SCHEMA_PATH is not set", path)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEPREVIEW_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SITEPREVIEW_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SITEPREVIEW_SITE_ID"); v != "" {
		cfg.Site.ID = v
	}
	if v := os.Getenv("SITEPREVIEW_SCHEMA_PATH"); v != "" {
		cfg.Site.SchemaPath = v
	}
	if v := os.Getenv("SITEPREVIEW_DATA_PATH"); v != "" {
		cfg.Site.DataPath = v
	}
	if v := os.Getenv("SITEPREVIEW_PAGE"); v != "" {
		cfg.Site.Page = v
	}
	if v := os.Getenv("SITEPREVIEW_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("SITEPREVIEW_PUBLISH_PATH"); v != "" {
		cfg.Publish.Path = v
	}
	if v := os.Getenv("SITEPREVIEW_CONTENT_URL"); v != "" {
		cfg.Content.BaseURL = v
	}
	if v := os.Getenv("SITEPREVIEW_CONTENT_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Content.TTL = ttl
		}
	}
	if v := os.Getenv("SITEPREVIEW_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("SITEPREVIEW_THEME_VARIANT"); v != "" {
		cfg.Theme.Variant = v
	}
	if v := os.Getenv("SITEPREVIEW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SITEPREVIEW_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Content.TTL == 0 {
		cfg.Content.TTL = 5 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Site.SchemaPath == "" {
		return fmt.Errorf("site.schema_path is required")
	}
	if cfg.Site.DataPath == "" {
		return fmt.Errorf("site.data_path is required")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q invalid", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q invalid", cfg.Logging.Format)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
