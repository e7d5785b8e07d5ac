// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package docker

import "context"

// ClientAPI is the runtime surface consumed by the installer. Defined
// as an interface so services can be tested against a fake runtime.
type ClientAPI interface {
	Ping(ctx context.Context) error
	ContainerExists(ctx context.Context, nameOrID string) (bool, error)
	ContainerCreate(ctx context.Context, opts ContainerCreateOptions) (string, error)
	ContainerStart(ctx context.Context, containerID string) error
	ImagePullSync(ctx context.Context, ref string) error
	Close() error
}

var _ ClientAPI = (*Client)(nil)
