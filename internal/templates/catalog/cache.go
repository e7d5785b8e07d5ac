// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package catalog

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// Snapshot is one immutable published catalog state. It is replaced
// wholesale on refresh and must never be mutated by readers.
type Snapshot struct {
	Templates   []models.Template
	RefreshedAt time.Time
}

// SourceProvider yields the user-configured source list. An empty list
// means the user has not overridden the defaults.
type SourceProvider interface {
	Get() []string
}

// Cache owns the published catalog snapshot and the refresh cycle.
type Cache struct {
	fetcher  *Fetcher
	provider SourceProvider
	fallback []string
	log      *logger.Logger

	mu   sync.RWMutex
	snap *Snapshot

	refreshing atomic.Bool
}

// NewCache creates a Cache. The fallback sources are used whenever the
// provider yields an empty list.
func NewCache(fetcher *Fetcher, provider SourceProvider, fallback []string, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		fetcher:  fetcher,
		provider: provider,
		fallback: fallback,
		log:      log.Named("catalog"),
	}
}

// Refresh rebuilds the snapshot from all resolved sources and publishes
// it atomically, even when the result is empty: a refresh that yields
// nothing still clears stale data. If a refresh is already in flight
// the call is a no-op and returns false immediately; it never waits.
func (c *Cache) Refresh(ctx context.Context) bool {
	if !c.refreshing.CompareAndSwap(false, true) {
		c.log.Debug("refresh already in progress, skipping")
		return false
	}
	defer c.refreshing.Store(false)

	sources := c.resolveSources()
	c.log.Info("refreshing template catalog", "sources", len(sources))

	groups := make([][]models.Template, 0, len(sources))
	for _, src := range sources {
		groups = append(groups, c.fetcher.Fetch(ctx, src))
	}

	templates := Merge(groups, c.log)
	snap := &Snapshot{
		Templates:   templates,
		RefreshedAt: time.Now(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	c.log.Info("template catalog refreshed", "templates", len(templates))
	return true
}

// List returns the current snapshot. If nothing has been published yet
// it performs one synchronous refresh first; when that refresh loses
// the in-flight race, an empty snapshot is returned rather than
// blocking on the other refresh.
func (c *Cache) List(ctx context.Context) *Snapshot {
	if snap := c.current(); snap != nil {
		return snap
	}

	c.Refresh(ctx)

	if snap := c.current(); snap != nil {
		return snap
	}
	return &Snapshot{}
}

// Lookup returns the template with the given stable ID from the current
// snapshot. Lookups go through List so a cold cache is populated first.
func (c *Cache) Lookup(ctx context.Context, id string) (models.Template, bool) {
	for _, tpl := range c.List(ctx).Templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return models.Template{}, false
}

// Populated reports whether a snapshot has been published.
func (c *Cache) Populated() bool {
	return c.current() != nil
}

func (c *Cache) current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// resolveSources returns the effective source URL list: the provider's
// list when it has any usable entries, otherwise the configured
// fallback. Entries are trimmed and empties dropped. An empty result is
// valid and yields an empty catalog.
func (c *Cache) resolveSources() []string {
	var raw []string
	if c.provider != nil {
		raw = c.provider.Get()
	}
	sources := cleanSources(raw)
	if len(sources) > 0 {
		return sources
	}
	return cleanSources(c.fallback)
}

func cleanSources(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
