// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	t.Setenv(EnvDBPath, "")
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:9090"

database:
  path: "./test.db"

catalog:
  base_url: "http://localhost:9999/books/v1"
  timeout: "3s"

scan:
  repeat_window: "1m"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:9090")
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "./test.db")
	}
	if cfg.Catalog.BaseURL != "http://localhost:9999/books/v1" {
		t.Errorf("Catalog.BaseURL = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Timeout != 3*time.Second {
		t.Errorf("Catalog.Timeout = %v, want %v", cfg.Catalog.Timeout, 3*time.Second)
	}
	if cfg.Scan.RepeatWindow != time.Minute {
		t.Errorf("Scan.RepeatWindow = %v, want %v", cfg.Scan.RepeatWindow, time.Minute)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[server]
http_addr = "127.0.0.1:7070"

[database]
path = "/tmp/shelf.db"

[scan]
repeat_window = "0s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:7070" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:7070")
	}
	if cfg.Database.Path != "/tmp/shelf.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/shelf.db")
	}
	if cfg.Scan.RepeatWindow != 0 {
		t.Errorf("Scan.RepeatWindow = %v, want 0", cfg.Scan.RepeatWindow)
	}
	// untouched sections keep defaults
	if cfg.Catalog.Timeout != 10*time.Second {
		t.Errorf("Catalog.Timeout = %v, want default 10s", cfg.Catalog.Timeout)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "logging:\n  level: warn\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Server.HTTPAddr != def.Server.HTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	}
	if cfg.Catalog.BaseURL != def.Catalog.BaseURL {
		t.Errorf("Catalog.BaseURL = %q, want default", cfg.Catalog.BaseURL)
	}
	if cfg.Scan.RepeatWindow != 10*time.Second {
		t.Errorf("Scan.RepeatWindow = %v, want 10s", cfg.Scan.RepeatWindow)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BOOKS_URL", "https://books.example.com/v1")
	t.Setenv("TEST_SHELF_DIR", "/srv/shelf")

	path := writeConfig(t, "config.yaml", `
database:
  path: "${TEST_SHELF_DIR}/shelf.db"
catalog:
  base_url: "${TEST_BOOKS_URL}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Catalog.BaseURL != "https://books.example.com/v1" {
		t.Errorf("Catalog.BaseURL = %q, want expanded value", cfg.Catalog.BaseURL)
	}
	if cfg.Database.Path != "/srv/shelf/shelf.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/srv/shelf/shelf.db")
	}
}

func TestLoad_DBPathEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "database:\n  path: ./file.db\n")
	t.Setenv(EnvDBPath, "/override/shelf.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/override/shelf.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
}

func TestLoad_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "config.yaml", "database:\n  path: ~/books/shelf.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Join(home, "books", "shelf.db")
	if cfg.Database.Path != want {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, want)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "config.yaml", "catalog:\n  timeout: soon\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "catalog.timeout") {
		t.Errorf("error %q should name the field", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad addr", "server:\n  http_addr: nonsense\n", "server.http_addr"},
		{"empty addr", "server:\n  http_addr: \"\"\n", "server.http_addr"},
		{"bad scheme", "catalog:\n  base_url: ftp://example.com\n", "catalog.base_url"},
		{"zero timeout", "catalog:\n  timeout: 0s\n", "catalog.timeout"},
		{"negative window", "scan:\n  repeat_window: -1s\n", "scan.repeat_window"},
		{"bad level", "logging:\n  level: chatty\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", tt.content))
			if err == nil {
				t.Fatalf("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv(EnvDBPath, "")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Database.Path != "/data/shelf/shelf.db" {
		t.Errorf("Database.Path = %q, want XDG default", cfg.Database.Path)
	}
	if cfg.Scan.RepeatWindow != 10*time.Second {
		t.Errorf("Scan.RepeatWindow = %v, want 10s", cfg.Scan.RepeatWindow)
	}
}

func TestLoadOrDefault_ParseErrorsStillFail(t *testing.T) {
	path := writeConfig(t, "config.yaml", "server: [unclosed\n")

	if _, err := LoadOrDefault(path); err == nil {
		t.Fatal("LoadOrDefault() expected parse error")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/shelf.yaml")
	if got := GetConfigPath(); got != "/etc/shelf.yaml" {
		t.Errorf("GetConfigPath() = %q, want env path", got)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := GetConfigPath(); got != "/xdg/shelf/config.yaml" {
		t.Errorf("GetConfigPath() = %q, want XDG path", got)
	}

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	if got, want := GetConfigPath(), filepath.Join(home, ".config", "shelf", "config.yaml"); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestWriteTemplate(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Error("WriteTemplate() should refuse to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Errorf("WriteTemplate(force) error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of template error = %v", err)
	}
	if cfg.Database.Path != "/data/shelf/shelf.db" {
		t.Errorf("Database.Path = %q, want template default", cfg.Database.Path)
	}
}
