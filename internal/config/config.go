// ABOUTME: Configuration loading and parsing for shelf
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by GetConfigPath and Load.
const (
	EnvConfigPath = "SHELF_CONFIG"
	EnvDBPath     = "SHELF_DB_PATH"
)

// Config represents the complete shelf configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Scan     ScanConfig     `yaml:"scan" toml:"scan"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the HTTP listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// CatalogConfig points at the book metadata API
type CatalogConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// ScanConfig controls repeat-scan suppression
type ScanConfig struct {
	RepeatWindow time.Duration `yaml:"-" toml:"-"`

	RepeatWindowRaw string `yaml:"repeat_window" toml:"repeat_window"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{HTTPAddr: "127.0.0.1:8080"},
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Catalog: CatalogConfig{
			BaseURL:    "https://www.googleapis.com/books/v1",
			Timeout:    10 * time.Second,
			TimeoutRaw: "10s",
		},
		Scan: ScanConfig{
			RepeatWindow:    10 * time.Second,
			RepeatWindowRaw: "10s",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded and
// fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(cfg)
}

// LoadOrDefault behaves like Load but returns the defaults when path does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		return finish(Default())
	}
	return cfg, err
}

func finish(cfg *Config) (*Config, error) {
	if p := os.Getenv(EnvDBPath); p != "" {
		cfg.Database.Path = p
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// expandHome turns a leading ~/ into the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if _, _, err := net.SplitHostPort(c.Server.HTTPAddr); err != nil {
		return fmt.Errorf("server.http_addr %q is not host:port: %w", c.Server.HTTPAddr, err)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil {
		return fmt.Errorf("catalog.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("catalog.base_url must use http or https scheme")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive")
	}
	if c.Scan.RepeatWindow < 0 {
		return fmt.Errorf("scan.repeat_window must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be text or json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Catalog.TimeoutRaw != "" {
		cfg.Catalog.Timeout, err = time.ParseDuration(cfg.Catalog.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing catalog.timeout %q: %w", cfg.Catalog.TimeoutRaw, err)
		}
	}

	if cfg.Scan.RepeatWindowRaw != "" {
		cfg.Scan.RepeatWindow, err = time.ParseDuration(cfg.Scan.RepeatWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing scan.repeat_window %q: %w", cfg.Scan.RepeatWindowRaw, err)
		}
	}

	return nil
}

// GetConfigPath returns the path to the config file.
// Priority: SHELF_CONFIG env var > XDG_CONFIG_HOME/shelf/config.yaml > ~/.config/shelf/config.yaml
func GetConfigPath() string {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "shelf", "config.yaml")
}

// DefaultDatabasePath returns the database location.
// Priority: XDG_DATA_HOME/shelf/shelf.db > ~/.local/share/shelf/shelf.db
func DefaultDatabasePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "shelf.db" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "shelf", "shelf.db")
}

// Template is the commented starter file written by "shelf init".
const Template = `# shelf configuration
server:
  http_addr: "127.0.0.1:8080"

database:
  # overridden by SHELF_DB_PATH
  path: '%s'

catalog:
  base_url: "https://www.googleapis.com/books/v1"
  timeout: "10s"

scan:
  # identical codes within this window are ignored; "0s" disables
  repeat_window: "10s"

logging:
  level: "info"   # debug, info, warn, error
  format: "text"  # text, json
`

// WriteTemplate writes the starter config to path, creating parent
// directories. An existing file is left alone unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	content := fmt.Sprintf(Template, DefaultDatabasePath())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
