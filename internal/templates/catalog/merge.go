// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package catalog

import (
	"strings"

	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// Merge combines per-source template lists into the canonical catalog.
// Groups are processed in source order and records in document order.
// Records without a usable title are dropped. The first record to claim
// a normalized title wins; later duplicates are discarded. Each kept
// record is assigned its stable ID.
func Merge(groups [][]models.Template, log *logger.Logger) []models.Template {
	if log == nil {
		log = logger.Nop()
	}

	total := 0
	for _, g := range groups {
		total += len(g)
	}

	merged := make([]models.Template, 0, total)
	seen := make(map[string]struct{}, total)

	for si, group := range groups {
		for _, tpl := range group {
			title := strings.TrimSpace(tpl.Title)
			if title == "" {
				log.Warn("dropping template without title", "source_index", si)
				continue
			}

			key := strings.ToLower(title)
			if _, dup := seen[key]; dup {
				log.Debug("dropping duplicate template", "title", title, "source_index", si)
				continue
			}
			seen[key] = struct{}{}

			tpl.ID = TemplateID(title)
			merged = append(merged, tpl)
		}
	}

	return merged
}

// TemplateID derives the stable catalog identifier from a template
// title: lowercase, with spaces and path separators replaced by
// underscores. Assigned once at merge time and stored on the record.
func TemplateID(title string) string {
	id := strings.ToLower(strings.TrimSpace(title))
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, "\\", "_")
	return id
}
