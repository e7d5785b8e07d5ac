// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package scheduler runs periodic background jobs, most importantly the
// template catalog refresh.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Jailtonfonseca/dockyard/internal/pkg/errors"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
)

// Job is one scheduled unit of work. The context is the scheduler's
// lifecycle context and is cancelled on Stop.
type Job func(ctx context.Context)

// Scheduler wraps a cron runner with a Start/Stop lifecycle. Jobs are
// added before Start.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger

	mu      sync.RWMutex
	running bool
	entries map[string]cron.EntryID

	// lifecycleCtx is the context passed to Start. Jobs derive from it
	// so in-flight work is cancelled on shutdown.
	lifecycleCtx context.Context
	cancel       context.CancelFunc
}

// New creates a scheduler. Panicking jobs are recovered, not fatal.
func New(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		log:     log.Named("scheduler"),
		entries: make(map[string]cron.EntryID),
	}
}

// AddJob schedules a named job. The spec is a cron expression or a
// descriptor like "@every 4h". Adding a job under an existing name
// replaces the old schedule.
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[name]; ok {
		s.cron.Remove(old)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.mu.RLock()
		ctx := s.lifecycleCtx
		s.mu.RUnlock()
		if ctx == nil {
			ctx = context.Background()
		}

		start := time.Now()
		s.log.Debug("job started", "job", name)
		job(ctx)
		s.log.Info("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return errors.Wrapf(err, errors.CodeBadRequest, "invalid schedule %q for job %s", spec, name)
	}

	s.entries[name] = id
	s.log.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New(errors.CodeConflict, "scheduler already running")
	}
	s.running = true
	s.lifecycleCtx, s.cancel = context.WithCancel(ctx)

	s.log.Info("starting scheduler", "jobs", len(s.entries))
	s.cron.Start()
	return nil
}

// Stop halts scheduling, cancels the job context and waits for running
// jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	s.log.Info("stopping scheduler")
	stopCtx := s.cron.Stop()
	cancel()
	<-stopCtx.Done()
	s.log.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler has been started.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Refresher triggers a catalog refresh.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// RefreshJob builds the periodic catalog refresh job. A skipped run
// (another refresh in flight) is logged, not retried.
func RefreshJob(cache Refresher, log *logger.Logger) Job {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx context.Context) {
		if !cache.Refresh(ctx) {
			log.Warn("scheduled catalog refresh skipped, another refresh in flight")
		}
	}
}
