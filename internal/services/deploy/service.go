// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package deploy

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/docker"
	"github.com/Jailtonfonseca/dockyard/internal/models"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// DefaultPullTimeout bounds a single image pull.
const DefaultPullTimeout = 10 * time.Minute

// InstallResult reports a successful install. Raw runtime handles never
// leave the service; callers get the derived name and a human message.
type InstallResult struct {
	ContainerName string `json:"container_name"`
	Message       string `json:"message"`
}

// Service installs templates as containers.
type Service struct {
	runtime     docker.ClientAPI
	pullTimeout time.Duration
	log         *logger.Logger

	// nameLocks serializes installs per derived container name so two
	// requests for the same name cannot both pass the conflict check.
	nameLocks sync.Map
}

// NewService creates an installer backed by the given runtime. A zero
// pullTimeout falls back to DefaultPullTimeout.
func NewService(runtime docker.ClientAPI, pullTimeout time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if pullTimeout <= 0 {
		pullTimeout = DefaultPullTimeout
	}
	return &Service{
		runtime:     runtime,
		pullTimeout: pullTimeout,
		log:         log.Named("deploy"),
	}
}

// Install launches the template as a detached container: verify runtime
// connectivity, derive the spec, guard against a name conflict, pull
// the image, then create and start.
func (s *Service) Install(ctx context.Context, tpl models.Template) (*InstallResult, error) {
	if err := s.runtime.Ping(ctx); err != nil {
		s.log.Error("docker daemon not reachable", "error", err)
		return nil, errors.WrapWithStatus(err, errors.CodeDockerConnection,
			"Docker daemon is not reachable", 503)
	}

	if tpl.Image == "" {
		return nil, errors.InvalidInput("template has no image")
	}

	spec := Translate(tpl, s.log)
	log := s.log.With("container", spec.Name, "image", spec.Image)

	unlock := s.lockName(spec.Name)
	defer unlock()

	exists, err := s.runtime.ContainerExists(ctx, spec.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Warn("container name already in use")
		return nil, errors.NewConflictError(
			fmt.Sprintf("a container named %q already exists", spec.Name))
	}

	log.Info("pulling image", "timeout", s.pullTimeout)
	pullCtx, cancel := context.WithTimeout(ctx, s.pullTimeout)
	defer cancel()

	if err := s.runtime.ImagePullSync(pullCtx, spec.Image); err != nil {
		if pullCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			log.Error("image pull timed out", "timeout", s.pullTimeout)
			return nil, errors.Timeout(
				fmt.Sprintf("pulling image %q exceeded %s", spec.Image, s.pullTimeout))
		}
		return nil, err
	}

	id, err := s.runtime.ContainerCreate(ctx, createOptions(spec))
	if err != nil {
		return nil, err
	}
	if err := s.runtime.ContainerStart(ctx, id); err != nil {
		return nil, err
	}

	log.Info("template installed", "container_id", id)
	return &InstallResult{
		ContainerName: spec.Name,
		Message:       fmt.Sprintf("Container %q started successfully.", spec.Name),
	}, nil
}

func (s *Service) lockName(name string) func() {
	muIface, _ := s.nameLocks.LoadOrStore(name, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// createOptions maps the runtime-agnostic spec onto the Docker wrapper
// options. Slices derived from maps are sorted for deterministic calls.
func createOptions(spec models.ContainerSpec) docker.ContainerCreateOptions {
	opts := docker.ContainerCreateOptions{
		Name:          spec.Name,
		Image:         spec.Image,
		Env:           spec.Env,
		RestartPolicy: spec.RestartPolicy,
	}

	if len(spec.PortBindings) > 0 {
		opts.PortBindings = make(map[string][]docker.PortBinding, len(spec.PortBindings))
		for port, host := range spec.PortBindings {
			binding := docker.PortBinding{}
			if host != nil {
				binding.HostPort = strconv.Itoa(*host)
			}
			opts.PortBindings[port] = []docker.PortBinding{binding}
		}
	}

	for container, vb := range spec.VolumeBindings {
		if vb.Bind == "" {
			opts.AnonymousVolumes = append(opts.AnonymousVolumes, container)
			continue
		}
		bind := vb.Bind + ":" + container
		if vb.ReadOnly {
			bind += ":ro"
		}
		opts.Binds = append(opts.Binds, bind)
	}
	sort.Strings(opts.AnonymousVolumes)
	sort.Strings(opts.Binds)

	return opts
}
