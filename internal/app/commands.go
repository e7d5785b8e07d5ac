// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package app

import (
	"context"
	"fmt"
	"runtime"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
	"github.com/Jailtonfonseca/dockyard/internal/services/sources"
	"github.com/Jailtonfonseca/dockyard/internal/templates/catalog"
)

// PrintVersion prints build version information.
func PrintVersion() {
	fmt.Printf("dockyard %s\n", Version)
	fmt.Printf("  commit:     %s\n", Commit)
	fmt.Printf("  built:      %s\n", BuildTime)
	fmt.Printf("  go version: %s\n", runtime.Version())
}

// RefreshOnce performs a single catalog refresh and prints the result.
// Used by the one-shot CLI command; no server or Docker client needed.
func RefreshOnce(ctx context.Context, cfgFile string) error {
	cfg, log, err := loadForCommand(cfgFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	store := sources.NewStore(cfg.Storage.Path, log)
	fetcher := catalog.NewFetcher(cfg.Templates.FetchTimeout, log)
	cache := catalog.NewCache(fetcher, store, cfg.Templates.Sources, log)

	cache.Refresh(ctx)
	snap := cache.List(ctx)
	fmt.Printf("Catalog refreshed: %d templates\n", len(snap.Templates))
	return nil
}

// ListSources prints the effective template sources: the persisted user
// list when present, otherwise the configured fallback.
func ListSources(cfgFile string) error {
	cfg, log, err := loadForCommand(cfgFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	store := sources.NewStore(cfg.Storage.Path, log)

	user := store.Get()
	if len(user) > 0 {
		fmt.Printf("User sources (%s):\n", store.Path())
		for _, src := range user {
			fmt.Printf("  - %s\n", src)
		}
		return nil
	}

	fmt.Println("No user sources configured, using defaults:")
	for _, src := range cfg.Templates.Sources {
		fmt.Printf("  - %s\n", src)
	}
	return nil
}

// loadForCommand loads validated config and a logger quiet enough for
// CLI output.
func loadForCommand(cfgFile string) (*Config, *logger.Logger, error) {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New("warn", "console")
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
