// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package deploy turns catalog templates into running containers.
package deploy

import (
	"strconv"
	"strings"

	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// DefaultRestartPolicy applies when a template does not name one.
const DefaultRestartPolicy = "unless-stopped"

// Translate derives the runtime spec from a template. It is total:
// malformed entries are logged and skipped, never fatal.
func Translate(tpl models.Template, log *logger.Logger) models.ContainerSpec {
	if log == nil {
		log = logger.Nop()
	}

	restart := strings.TrimSpace(tpl.RestartPolicy)
	if restart == "" {
		restart = DefaultRestartPolicy
	}

	return models.ContainerSpec{
		Image:          tpl.Image,
		Name:           DeriveName(tpl),
		PortBindings:   TranslatePorts(tpl.Ports, log),
		VolumeBindings: TranslateVolumes(tpl.Volumes, log),
		Env:            TranslateEnv(tpl.Env, log),
		RestartPolicy:  restart,
	}
}

// DeriveName picks the container name: the template's explicit name,
// else its title, else the image reference with any tag stripped. The
// chosen value is sanitized the same way in all three cases.
func DeriveName(tpl models.Template) string {
	switch {
	case strings.TrimSpace(tpl.Name) != "":
		return sanitizeName(tpl.Name)
	case strings.TrimSpace(tpl.Title) != "":
		return sanitizeName(tpl.Title)
	default:
		image, _, _ := strings.Cut(tpl.Image, ":")
		return sanitizeName(image)
	}
}

func sanitizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}

// TranslatePorts parses template port mappings into bindings keyed by
// "containerPort/proto". Both "host:container/proto" and
// "container/proto" shapes are accepted; the latter maps to a nil host
// port, requesting ephemeral assignment. Anything else is skipped.
func TranslatePorts(ports []string, log *logger.Logger) map[string]*int {
	if len(ports) == 0 {
		return nil
	}

	bindings := make(map[string]*int, len(ports))
	for _, raw := range ports {
		entry := strings.TrimSpace(raw)
		parts := strings.Split(entry, ":")

		switch len(parts) {
		case 1: // container/proto
			key, ok := splitPortProto(parts[0])
			if !ok {
				log.Warn("skipping malformed port mapping", "port", raw)
				continue
			}
			bindings[key] = nil
		case 2: // host:container/proto
			host, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				log.Warn("skipping port mapping with non-numeric host port", "port", raw)
				continue
			}
			key, ok := splitPortProto(parts[1])
			if !ok {
				log.Warn("skipping malformed port mapping", "port", raw)
				continue
			}
			bindings[key] = &host
		default:
			log.Warn("skipping malformed port mapping", "port", raw)
		}
	}

	if len(bindings) == 0 {
		return nil
	}
	return bindings
}

// splitPortProto validates "port/proto" and returns the normalized key.
func splitPortProto(s string) (string, bool) {
	port, proto, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || proto == "" {
		return "", false
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", false
	}
	return port + "/" + proto, true
}

// TranslateVolumes parses template volume mappings, keyed by container
// path. A mapping with a bind becomes a host mount (ro when readonly);
// without one it becomes an anonymous volume. Mappings missing the
// container path are skipped.
func TranslateVolumes(volumes []models.TemplateVolume, log *logger.Logger) map[string]models.VolumeBinding {
	if len(volumes) == 0 {
		return nil
	}

	bindings := make(map[string]models.VolumeBinding, len(volumes))
	for _, vol := range volumes {
		container := strings.TrimSpace(vol.Container)
		if container == "" {
			log.Warn("skipping volume mapping without container path")
			continue
		}
		bindings[container] = models.VolumeBinding{
			Bind:     strings.TrimSpace(vol.Bind),
			ReadOnly: vol.ReadOnly,
		}
	}

	if len(bindings) == 0 {
		return nil
	}
	return bindings
}

// TranslateEnv builds "NAME=VALUE" entries in template order. A present
// value wins over the default, even when it is empty; neither yields an
// empty value. Entries without a name are skipped.
func TranslateEnv(env []models.TemplateEnv, log *logger.Logger) []string {
	if len(env) == 0 {
		return nil
	}

	out := make([]string, 0, len(env))
	for _, e := range env {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			log.Warn("skipping environment variable without name")
			continue
		}
		value := e.Default
		if e.Value != nil {
			value = *e.Value
		}
		out = append(out, name+"="+value)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
