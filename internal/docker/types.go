// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package docker

// PortBinding maps a container port to a host address
type PortBinding struct {
	// HostIP to bind to (empty for all interfaces)
	HostIP string

	// HostPort to bind to (empty for ephemeral assignment)
	HostPort string
}

// PullProgress represents one image pull progress event
type PullProgress struct {
	Status         string `json:"status"`
	ID             string `json:"id,omitempty"`
	Error          string `json:"error,omitempty"`
	Progress       string `json:"progress,omitempty"`
	ProgressDetail struct {
		Current int64 `json:"current"`
		Total   int64 `json:"total"`
	} `json:"progressDetail,omitempty"`
}
