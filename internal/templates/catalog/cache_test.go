// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

type staticProvider struct {
	sources []string
}

func (p *staticProvider) Get() []string { return p.sources }

func newTestCache(t *testing.T, provider SourceProvider, fallback []string) *Cache {
	t.Helper()
	return NewCache(NewFetcher(2*time.Second, logger.Nop()), provider, fallback, logger.Nop())
}

func TestCache_RefreshPublishesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title": "Nginx", "type": 2}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	if c.Populated() {
		t.Fatal("cache should start empty")
	}
	if !c.Refresh(context.Background()) {
		t.Fatal("Refresh() = false, want true")
	}

	snap := c.List(context.Background())
	if len(snap.Templates) != 1 {
		t.Fatalf("snapshot has %d templates, want 1", len(snap.Templates))
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("RefreshedAt should be set")
	}
}

func TestCache_RefreshReplacesWholesale(t *testing.T) {
	var serveSecond atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if serveSecond.Load() {
			w.Write([]byte(`[{"title": "Only B"}]`))
			return
		}
		w.Write([]byte(`[{"title": "Only A"}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	c.Refresh(context.Background())
	serveSecond.Store(true)
	c.Refresh(context.Background())

	snap := c.List(context.Background())
	if len(snap.Templates) != 1 || snap.Templates[0].Title != "Only B" {
		t.Fatalf("snapshot = %+v, want only the second result", snap.Templates)
	}
}

func TestCache_EmptyResultClearsStaleData(t *testing.T) {
	var failNow atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failNow.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"title": "App"}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	c.Refresh(context.Background())
	if got := c.List(context.Background()); len(got.Templates) != 1 {
		t.Fatalf("precondition failed: %d templates", len(got.Templates))
	}

	failNow.Store(true)
	c.Refresh(context.Background())

	if got := c.List(context.Background()); len(got.Templates) != 0 {
		t.Errorf("stale templates survived a failed refresh: %+v", got.Templates)
	}
}

func TestCache_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		close(entered)
		<-release
		w.Write([]byte(`[{"title": "Slow"}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	done := make(chan bool)
	go func() {
		done <- c.Refresh(context.Background())
	}()

	<-entered

	// Second refresh while the first holds the in-flight flag: must be
	// a no-op that returns immediately.
	start := time.Now()
	if c.Refresh(context.Background()) {
		t.Error("concurrent Refresh() = true, want false")
	}
	if time.Since(start) > time.Second {
		t.Error("concurrent Refresh() blocked instead of returning immediately")
	}

	close(release)
	if !<-done {
		t.Error("first Refresh() = false, want true")
	}
	if hits.Load() != 1 {
		t.Errorf("source fetched %d times, want 1", hits.Load())
	}
}

func TestCache_ListLazyRefresh(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"title": "Lazy"}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	snap := c.List(context.Background())
	if len(snap.Templates) != 1 {
		t.Fatalf("List() on cold cache = %d templates, want 1", len(snap.Templates))
	}
	if hits.Load() != 1 {
		t.Fatalf("cold List() fetched %d times, want 1", hits.Load())
	}

	// Warm list must not refetch.
	c.List(context.Background())
	if hits.Load() != 1 {
		t.Errorf("warm List() refetched (hits = %d)", hits.Load())
	}
}

func TestCache_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title": "My Cool App", "type": 2, "image": "cool:latest"}]`))
	}))
	defer srv.Close()

	c := newTestCache(t, &staticProvider{sources: []string{srv.URL}}, nil)

	tpl, ok := c.Lookup(context.Background(), "my_cool_app")
	if !ok {
		t.Fatal("Lookup() should find the template by stored ID")
	}
	if tpl.Image != "cool:latest" {
		t.Errorf("Image = %q, want cool:latest", tpl.Image)
	}

	if _, ok := c.Lookup(context.Background(), "missing"); ok {
		t.Error("Lookup() of unknown ID should report not found")
	}
}

func TestCache_SourceResolution(t *testing.T) {
	var userHits, fallbackHits atomic.Int32
	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userHits.Add(1)
		w.Write([]byte(`[{"title": "User"}]`))
	}))
	defer userSrv.Close()
	fallbackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fallbackHits.Add(1)
		w.Write([]byte(`[{"title": "Fallback"}]`))
	}))
	defer fallbackSrv.Close()

	// User list present: fallback must not be contacted.
	provider := &staticProvider{sources: []string{"  ", userSrv.URL}}
	c := newTestCache(t, provider, []string{fallbackSrv.URL})
	c.Refresh(context.Background())

	if userHits.Load() != 1 || fallbackHits.Load() != 0 {
		t.Fatalf("user=%d fallback=%d, want 1/0", userHits.Load(), fallbackHits.Load())
	}

	// User list emptied (only blanks): fallback takes over.
	provider.sources = []string{"", "   "}
	c.Refresh(context.Background())

	if fallbackHits.Load() != 1 {
		t.Errorf("fallback hits = %d, want 1", fallbackHits.Load())
	}
	snap := c.List(context.Background())
	if len(snap.Templates) != 1 || snap.Templates[0].Title != "Fallback" {
		t.Errorf("snapshot = %+v, want the fallback template", snap.Templates)
	}
}

func TestCache_NoSourcesIsValid(t *testing.T) {
	c := newTestCache(t, &staticProvider{}, nil)

	if !c.Refresh(context.Background()) {
		t.Fatal("Refresh() with no sources should still run and publish")
	}
	snap := c.List(context.Background())
	if len(snap.Templates) != 0 {
		t.Errorf("snapshot = %d templates, want 0", len(snap.Templates))
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("empty refresh should still stamp RefreshedAt")
	}
}
