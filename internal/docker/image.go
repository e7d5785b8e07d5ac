// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package docker

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/docker/docker/api/types/image"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// ImagePull pulls an image from a registry with progress reporting
func (c *Client) ImagePull(ctx context.Context, ref string) (<-chan PullProgress, error) {
	log := logger.FromContext(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, errors.New(errors.CodeDockerConnection, "client is closed")
	}

	log.Info("pulling image", "ref", ref)

	reader, err := c.cli.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		log.Error("failed to pull image", "ref", ref, "error", err)
		return nil, classifyPullError(ref, err.Error(), err)
	}

	progressCh := make(chan PullProgress, 100)

	go func() {
		defer close(progressCh)
		defer reader.Close()

		decoder := json.NewDecoder(reader)
		for {
			var progress PullProgress
			if err := decoder.Decode(&progress); err != nil {
				if err != io.EOF {
					progressCh <- PullProgress{Error: err.Error()}
				}
				return
			}

			progressCh <- progress
			if progress.Error != "" {
				return
			}
		}
	}()

	return progressCh, nil
}

// ImagePullSync pulls an image synchronously (blocks until complete)
func (c *Client) ImagePullSync(ctx context.Context, ref string) error {
	log := logger.FromContext(ctx)

	progressCh, err := c.ImagePull(ctx, ref)
	if err != nil {
		return err
	}

	for progress := range progressCh {
		if progress.Error != "" {
			return classifyPullError(ref, progress.Error, nil)
		}
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeImagePullFailed, "image pull interrupted").
			WithDetail("ref", ref)
	}

	log.Info("image pulled", "ref", ref)
	return nil
}

// classifyPullError distinguishes a missing image from other pull
// failures based on the registry error text the daemon relays.
func classifyPullError(ref, message string, cause error) *errors.AppError {
	lower := strings.ToLower(message)
	notFound := strings.Contains(lower, "not found") ||
		strings.Contains(lower, "manifest unknown") ||
		strings.Contains(lower, "repository does not exist") ||
		strings.Contains(lower, "no such image")
	if notFound {
		return errors.NewWithStatus(errors.CodeImageNotFound, "image not found: "+ref, 404).
			WithDetail("ref", ref)
	}
	if cause != nil {
		return errors.Wrap(cause, errors.CodeImagePullFailed, "failed to pull image").
			WithDetail("ref", ref)
	}
	return errors.New(errors.CodeImagePullFailed, message).WithDetail("ref", ref)
}
