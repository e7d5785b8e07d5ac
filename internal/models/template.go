// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Template types as used by Portainer v2 template documents.
const (
	TemplateTypeInfo      TemplateType = 1 // informational, not installable
	TemplateTypeContainer TemplateType = 2 // single-container application
)

// TemplateType is the numeric template kind. Source documents are not
// consistent about encoding it: both 2 and "2" appear in the wild, so
// unmarshalling accepts either. Unrecognized values decode to 0 rather
// than failing the whole document.
type TemplateType int

// UnmarshalJSON accepts a JSON number or a numeric string.
func (t *TemplateType) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*t = 0
			return nil
		}
		*t = TemplateType(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		*t = 0
		return nil
	}
	*t = TemplateType(n)
	return nil
}

// MarshalJSON always emits the numeric form.
func (t TemplateType) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(t))
}

// Template is a Portainer-style application template as aggregated into
// the catalog. Fields the engine understands are typed; everything else
// a source document carries is preserved opaquely in Extra and passed
// through on marshalling.
type Template struct {
	ID            string           `json:"id,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Logo          string           `json:"logo,omitempty"`
	Type          TemplateType     `json:"type,omitempty"`
	Image         string           `json:"image,omitempty"`
	Name          string           `json:"name,omitempty"`
	Ports         []string         `json:"ports,omitempty"`
	Volumes       []TemplateVolume `json:"volumes,omitempty"`
	Env           []TemplateEnv    `json:"env,omitempty"`
	RestartPolicy string           `json:"restart_policy,omitempty"`

	// Extra holds source-document fields the engine does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// Installable reports whether this template can be launched as a container.
func (t Template) Installable() bool {
	return t.Type == TemplateTypeContainer
}

// knownTemplateKeys are the JSON keys bound to typed Template fields.
var knownTemplateKeys = []string{
	"id", "title", "description", "logo", "type", "image", "name",
	"ports", "volumes", "env", "restart_policy",
}

// UnmarshalJSON decodes the typed fields and captures everything else
// into Extra.
func (t *Template) UnmarshalJSON(data []byte) error {
	type alias Template
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownTemplateKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		a.Extra = raw
	}

	*t = Template(a)
	return nil
}

// MarshalJSON merges the typed fields over the preserved Extra fields.
// Typed fields win on key collision.
func (t Template) MarshalJSON() ([]byte, error) {
	type alias Template
	typed, err := json.Marshal(alias(t))
	if err != nil {
		return nil, err
	}

	if len(t.Extra) == 0 {
		return typed, nil
	}

	merged := make(map[string]json.RawMessage, len(t.Extra)+len(knownTemplateKeys))
	for k, v := range t.Extra {
		merged[k] = v
	}
	var typedMap map[string]json.RawMessage
	if err := json.Unmarshal(typed, &typedMap); err != nil {
		return nil, err
	}
	for k, v := range typedMap {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// TemplateVolume represents a volume mapping in a template.
type TemplateVolume struct {
	Container string `json:"container"`
	Bind      string `json:"bind,omitempty"`
	ReadOnly  bool   `json:"readonly,omitempty"`
}

// TemplateEnv represents an environment variable in a template. Value
// is a pointer so that a present-but-empty value is distinguishable
// from an absent one: a present value always wins over Default.
type TemplateEnv struct {
	Name    string  `json:"name"`
	Label   string  `json:"label,omitempty"`
	Default string  `json:"default,omitempty"`
	Value   *string `json:"value,omitempty"`
}

// SourceDocument is the JSON structure of a remote template source.
// Sources publish either a bare array of templates or this wrapper.
// Records stay raw so one malformed template cannot reject the rest.
type SourceDocument struct {
	Templates []json.RawMessage `json:"templates"`
}

// ContainerSpec is the runtime-ready derivation of a template, produced
// per install. It carries no Docker SDK types.
type ContainerSpec struct {
	Image string
	Name  string

	// PortBindings maps "containerPort/proto" to a host port. A nil
	// value requests an ephemeral host port.
	PortBindings map[string]*int

	// VolumeBindings maps container paths to their host binding. An
	// empty Bind means an anonymous volume.
	VolumeBindings map[string]VolumeBinding

	// Env entries are "NAME=VALUE", in template order.
	Env []string

	RestartPolicy string
}

// VolumeBinding describes how a container path is backed.
type VolumeBinding struct {
	Bind     string
	ReadOnly bool
}
