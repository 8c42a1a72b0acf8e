// ABOUTME: Shared setup for commands that touch the local database
// ABOUTME: Resolves the config path, applies --db and opens the shelf

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389/shelf/internal/catalog"
	"github.com/2389/shelf/internal/config"
	"github.com/2389/shelf/internal/library"
	"github.com/2389/shelf/internal/profile"
	"github.com/2389/shelf/internal/scan"
	"github.com/2389/shelf/internal/store"
)

// resolveConfigPath returns --config when set, otherwise the default lookup.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.GetConfigPath()
}

// loadConfig loads the config file (or defaults) and applies --db.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, nil
}

// env bundles what the local commands operate on.
type env struct {
	cfg    *config.Config
	kv     store.KV
	shelf  *library.Shelf
	logger *slog.Logger
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// local commands print their own results
	lc := cfg.Logging
	if strings.EqualFold(lc.Level, "info") {
		lc.Level = "warn"
	}
	logger := setupLogger(lc)

	kv, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	shelf, err := library.Open(ctx, kv)
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("loading books: %w", err)
	}

	logger.Debug("opened shelf", "db", cfg.Database.Path, "books", shelf.Len())
	return &env{cfg: cfg, kv: kv, shelf: shelf, logger: logger}, nil
}

func (e *env) scanner() *scan.Scanner {
	looker := catalog.NewClient(e.cfg.Catalog.BaseURL, e.cfg.Catalog.Timeout)
	return scan.New(e.shelf, looker, e.cfg.Scan.RepeatWindow)
}

func (e *env) profiles() *profile.Service {
	return profile.NewService(e.kv)
}

func (e *env) Close() error {
	return e.kv.Close()
}
