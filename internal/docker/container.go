// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package docker

import (
	"context"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// ContainerCreateOptions specifies options for creating a container
type ContainerCreateOptions struct {
	Name  string
	Image string
	Env   []string

	// Binds are host bind mounts ("host:container[:ro]")
	Binds []string

	// AnonymousVolumes are container paths backed by unnamed volumes
	AnonymousVolumes []string

	// PortBindings maps "containerPort/proto" to host bindings. An
	// empty HostPort requests an ephemeral port.
	PortBindings map[string][]PortBinding

	RestartPolicy string
}

// ContainerExists reports whether a container with the given name or ID
// exists, running or not.
func (c *Client) ContainerExists(ctx context.Context, nameOrID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false, errors.New(errors.CodeDockerConnection, "client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.cli.ContainerInspect(ctx, nameOrID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CodeDockerError, "failed to inspect container")
	}
	return true, nil
}

// ContainerCreate creates a new container
func (c *Client) ContainerCreate(ctx context.Context, opts ContainerCreateOptions) (string, error) {
	log := logger.FromContext(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return "", errors.New(errors.CodeDockerConnection, "client is closed")
	}

	config := &container.Config{
		Image: opts.Image,
		Env:   opts.Env,
	}

	if len(opts.AnonymousVolumes) > 0 {
		config.Volumes = make(map[string]struct{}, len(opts.AnonymousVolumes))
		for _, path := range opts.AnonymousVolumes {
			config.Volumes[path] = struct{}{}
		}
	}

	hostConfig := &container.HostConfig{
		Binds: opts.Binds,
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyMode(opts.RestartPolicy),
		},
	}

	if len(opts.PortBindings) > 0 {
		config.ExposedPorts = make(nat.PortSet, len(opts.PortBindings))
		hostConfig.PortBindings = make(nat.PortMap, len(opts.PortBindings))
		for port, bindings := range opts.PortBindings {
			natPort := nat.Port(port)
			config.ExposedPorts[natPort] = struct{}{}
			var portBindings []nat.PortBinding
			for _, b := range bindings {
				portBindings = append(portBindings, nat.PortBinding{
					HostIP:   b.HostIP,
					HostPort: b.HostPort,
				})
			}
			hostConfig.PortBindings[natPort] = portBindings
		}
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, opts.Name)
	if err != nil {
		log.Error("failed to create container", "name", opts.Name, "image", opts.Image, "error", err)
		return "", errors.Wrap(err, errors.CodeDockerError, "failed to create container")
	}

	for _, warning := range resp.Warnings {
		log.Warn("container creation warning", "container_id", resp.ID, "warning", warning)
	}

	log.Info("container created", "container_id", resp.ID, "name", opts.Name, "image", opts.Image)
	return resp.ID, nil
}

// ContainerStart starts a created or stopped container
func (c *Client) ContainerStart(ctx context.Context, containerID string) error {
	log := logger.FromContext(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errors.New(errors.CodeDockerConnection, "client is closed")
	}

	if err := c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		if client.IsErrNotFound(err) {
			return errors.New(errors.CodeContainerNotFound, "container not found").
				WithDetail("container_id", containerID)
		}
		log.Error("failed to start container", "container_id", containerID, "error", err)
		return errors.Wrap(err, errors.CodeDockerError, "failed to start container")
	}

	log.Info("container started", "container_id", containerID)
	return nil
}
