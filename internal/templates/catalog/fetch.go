// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package catalog aggregates Portainer-style application templates from
// remote JSON sources into an atomically published in-memory snapshot.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// DefaultFetchTimeout bounds a single source download.
const DefaultFetchTimeout = 10 * time.Second

// maxSourceBytes caps how much of a source document is read. Template
// files are small; anything past this is a broken or hostile source.
const maxSourceBytes = 16 << 20 // 16 MiB

// Fetcher downloads and decodes one template source document. A source
// failure of any kind (network, timeout, bad status, bad JSON, wrong
// shape) is logged and absorbed: the source simply contributes nothing
// to the refresh.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	log     *logger.Logger
}

// NewFetcher creates a Fetcher with the given per-source timeout.
// A zero timeout falls back to DefaultFetchTimeout.
func NewFetcher(timeout time.Duration, log *logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
		log:     log.Named("fetcher"),
	}
}

// Fetch downloads url and returns its templates. The returned slice is
// empty on any failure; Fetch never returns an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) []models.Template {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.log.Warn("invalid template source URL", "url", url, "error", err)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("template source unreachable", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.Warn("template source returned bad status", "url", url, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes))
	if err != nil {
		f.log.Warn("failed to read template source body", "url", url, "error", err)
		return nil
	}

	templates, dropped, err := decodeSource(body)
	if err != nil {
		f.log.Warn("failed to decode template source", "url", url, "error", err)
		return nil
	}
	if dropped > 0 {
		f.log.Warn("dropped malformed template records", "url", url, "dropped", dropped)
	}

	f.log.Debug("fetched template source", "url", url, "count", len(templates))
	return templates
}

// decodeSource accepts the two shapes sources publish: a bare JSON
// array of templates, or an object with a "templates" array. Records
// are decoded one at a time so a single malformed template (a numeric
// title, ports that are not strings) drops only that record, not the
// whole source.
func decodeSource(body []byte) ([]models.Template, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, fmt.Errorf("empty document")
	}

	var records []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, 0, err
		}
	} else {
		var doc models.SourceDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, 0, err
		}
		if doc.Templates == nil {
			return nil, 0, fmt.Errorf("document has no templates array")
		}
		records = doc.Templates
	}

	templates := make([]models.Template, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var tpl models.Template
		if err := json.Unmarshal(rec, &tpl); err != nil {
			dropped++
			continue
		}
		templates = append(templates, tpl)
	}
	return templates, dropped, nil
}
