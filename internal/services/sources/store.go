// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package sources persists the user-configured template source list.
package sources

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// FileName is the source list file under the storage directory.
const FileName = "user_template_sources.json"

// Store reads and writes the user template source list as a JSON array
// of URL strings. A missing or unreadable file is treated as an empty
// list; reads never fail.
type Store struct {
	path string
	log  *logger.Logger

	mu sync.Mutex
}

// NewStore creates a Store rooted at the given storage directory.
func NewStore(storageDir string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		path: filepath.Join(storageDir, FileName),
		log:  log.Named("sources"),
	}
}

// Get returns the persisted source list. Missing or invalid files yield
// an empty list.
func (s *Store) Get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("failed to read source list", "path", s.path, "error", err)
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Warn("source list file is not a JSON string array", "path", s.path, "error", err)
		return nil
	}
	return list
}

// Save validates and persists the source list, replacing the previous
// contents. Entries must be absolute http(s) URLs; saving an empty list
// is allowed and reverts the catalog to its configured defaults.
func (s *Store) Save(list []string) error {
	if err := validate(list); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create storage directory")
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode source list")
	}

	// Write via temp file + rename so a crash cannot leave a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write source list")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, errors.CodeInternal, "replace source list")
	}

	s.log.Info("source list saved", "entries", len(list))
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func validate(list []string) error {
	fields := make(map[string]string)
	for i, entry := range list {
		key := fmt.Sprintf("sources[%d]", i)
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			fields[key] = "empty entry"
			continue
		}
		u, err := url.Parse(trimmed)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fields[key] = "not an absolute http(s) URL"
		}
	}
	if len(fields) > 0 {
		return errors.ValidationFailed(fields)
	}
	return nil
}
