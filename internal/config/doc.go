// Package config handles configuration loading for shelf.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path given with the --config flag
//  2. Path from the SHELF_CONFIG environment variable
//  3. $XDG_CONFIG_HOME/shelf/config.yaml
//  4. ~/.config/shelf/config.yaml
//
// A file ending in .toml is decoded as TOML; anything else is YAML. When no
// file exists the defaults are used.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	catalog:
//	  base_url: "${BOOKS_API_URL}"
//
// SHELF_DB_PATH always overrides database.path.
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	database:
//	  path: "~/.local/share/shelf/shelf.db"
//
//	catalog:
//	  base_url: "https://www.googleapis.com/books/v1"
//	  timeout: "10s"
//
//	scan:
//	  repeat_window: "10s"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
