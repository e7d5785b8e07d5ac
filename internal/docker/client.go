// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package docker wraps the Docker SDK with the narrow surface the
// installer needs: connectivity checks, image pulls, and container
// create/start. SDK types never cross the package boundary.
package docker

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/client"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

const (
	// DefaultTimeout is the default timeout for Docker API operations
	DefaultTimeout = 30 * time.Second

	// DefaultSocketPath is the standard Unix socket path for Docker
	DefaultSocketPath = "/var/run/docker.sock"

	// DefaultPingTimeout is the timeout for ping operations
	DefaultPingTimeout = 5 * time.Second
)

// ClientOptions configures a Docker client connection
type ClientOptions struct {
	// Host is the Docker daemon address (e.g. unix:///var/run/docker.sock or tcp://host:2375)
	Host string

	// APIVersion is the Docker API version to use (empty for auto-negotiation)
	APIVersion string

	// Timeout for API operations (default: 30s)
	Timeout time.Duration

	// SkipVerify skips the startup ping. Connectivity errors then
	// surface on first use instead of at construction.
	SkipVerify bool
}

// Client wraps the Docker SDK client
type Client struct {
	cli     *client.Client
	host    string
	timeout time.Duration
	mu      sync.RWMutex
	closed  bool
}

// NewClient creates a new Docker client with the given options and
// verifies connectivity with a ping before returning.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	log := logger.FromContext(ctx)

	if opts.Host == "" {
		opts.Host = "unix://" + DefaultSocketPath
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	log.Debug("creating Docker client", "host", opts.Host, "timeout", opts.Timeout)

	clientOpts := []client.Opt{
		client.WithHost(opts.Host),
		client.WithAPIVersionNegotiation(),
	}
	if opts.APIVersion != "" {
		clientOpts = append(clientOpts, client.WithVersion(opts.APIVersion))
	}
	if httpClient := buildHTTPClient(opts); httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(httpClient))
	}

	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDockerConnection, "failed to create Docker client")
	}

	if !opts.SkipVerify {
		pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()

		if _, err := cli.Ping(pingCtx); err != nil {
			cli.Close()
			return nil, errors.Wrap(err, errors.CodeDockerConnection, "failed to ping Docker daemon")
		}
	}

	log.Debug("Docker client created", "api_version", cli.ClientVersion(), "host", opts.Host)

	return &Client{
		cli:     cli,
		host:    opts.Host,
		timeout: opts.Timeout,
	}, nil
}

// buildHTTPClient returns an HTTP client for Unix socket hosts, nil for
// everything else (the SDK default handles TCP).
func buildHTTPClient(opts ClientOptions) *http.Client {
	if !strings.HasPrefix(opts.Host, "unix://") {
		return nil
	}

	socketPath := strings.TrimPrefix(opts.Host, "unix://")
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: opts.Timeout}
			return dialer.DialContext(ctx, "unix", socketPath)
		},
	}
	return &http.Client{Transport: transport}
}

// Host returns the Docker host address
func (c *Client) Host() string {
	return c.host
}

// Ping checks Docker daemon connectivity
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errors.New(errors.CodeDockerConnection, "client is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
	defer cancel()

	if _, err := c.cli.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeDockerConnection, "ping failed")
	}
	return nil
}

// Close closes the Docker client connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	if c.cli != nil {
		return c.cli.Close()
	}
	return nil
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
