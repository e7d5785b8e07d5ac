// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

// Package app wires configuration, services, the scheduler and the API
// server into a runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jailtonfonseca/dockyard/internal/api"
	"github.com/Jailtonfonseca/dockyard/internal/api/handlers"
	"github.com/Jailtonfonseca/dockyard/internal/api/middleware"
	"github.com/Jailtonfonseca/dockyard/internal/docker"
	"github.com/Jailtonfonseca/dockyard/internal/pkg/logger"
	"github.com/Jailtonfonseca/dockyard/internal/scheduler"
	"github.com/Jailtonfonseca/dockyard/internal/services/deploy"
	"github.com/Jailtonfonseca/dockyard/internal/services/sources"
	"github.com/Jailtonfonseca/dockyard/internal/templates/catalog"
)

// Version information, set at build time via ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// SetVersionInfo sets build version information.
func SetVersionInfo(version, commit, buildTime string) {
	Version = version
	Commit = commit
	BuildTime = buildTime
}

// App holds the wired application components.
type App struct {
	cfg     *Config
	log     *logger.Logger
	runtime *docker.Client
	store   *sources.Store
	cache   *catalog.Cache
	sched   *scheduler.Scheduler
	server  *api.Server
}

// New wires the application from configuration. The Docker daemon does
// not have to be reachable at startup; the catalog works without it and
// installs surface the connectivity error per request.
func New(ctx context.Context, cfg *Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	store := sources.NewStore(cfg.Storage.Path, log)
	fetcher := catalog.NewFetcher(cfg.Templates.FetchTimeout, log)
	cache := catalog.NewCache(fetcher, store, cfg.Templates.Sources, log)

	runtime, err := docker.NewClient(logger.IntoContext(ctx, log), docker.ClientOptions{
		Host:       cfg.Docker.Host,
		APIVersion: cfg.Docker.APIVersion,
		Timeout:    cfg.Docker.Timeout,
		SkipVerify: true,
	})
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	installer := deploy.NewService(runtime, cfg.Deploy.PullTimeout, log)

	systemHandler := handlers.NewSystemHandler(Version, Commit, log)
	systemHandler.RegisterHealthChecker("docker", handlers.DockerHealthChecker(runtime.Ping))
	systemHandler.RegisterHealthChecker("catalog", handlers.CatalogHealthChecker(cache.Populated))

	routerCfg := api.DefaultRouterConfig()
	routerCfg.CORSConfig = middleware.CORSFromOrigins(cfg.Server.CORSOrigins)
	routerCfg.RequestTimeout = cfg.Server.RequestTimeout
	routerCfg.InstallTimeout = cfg.Deploy.PullTimeout + 5*time.Minute
	routerCfg.Logger = log.Named("http")

	router := api.NewRouter(routerCfg, &api.Handlers{
		System:   systemHandler,
		Template: handlers.NewTemplateHandler(cache, installer, log),
		Source:   handlers.NewSourceHandler(store, cache, log),
	})

	server := api.NewServer(api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)

	sched := scheduler.New(log)
	interval := cfg.Templates.RefreshInterval
	if err := sched.AddJob("catalog_refresh", fmt.Sprintf("@every %s", interval), scheduler.RefreshJob(cache, log)); err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		runtime: runtime,
		store:   store,
		cache:   cache,
		sched:   sched,
		server:  server,
	}, nil
}

// Cache returns the template cache, for one-shot CLI commands.
func (a *App) Cache() *catalog.Cache { return a.cache }

// Store returns the source store, for one-shot CLI commands.
func (a *App) Store() *sources.Store { return a.store }

// Run starts all components and blocks until the context is cancelled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting dockyard",
		"version", Version,
		"commit", Commit,
		"addr", a.server.Addr(),
	)

	if a.cfg.Templates.RefreshOnStart {
		// Warm the cache in the background so startup is not held
		// hostage by slow sources.
		go a.cache.Refresh(ctx)
	}

	if err := a.sched.Start(ctx); err != nil {
		return err
	}

	serverErr := a.server.StartAsync()

	select {
	case err := <-serverErr:
		a.shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received")
	a.shutdown(context.Background())
	return nil
}

func (a *App) shutdown(ctx context.Context) {
	a.sched.Stop()
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("server shutdown failed", "error", err)
	}
	if err := a.runtime.Close(); err != nil {
		a.log.Error("docker client close failed", "error", err)
	}
	a.log.Info("dockyard stopped")
}

// Run loads configuration and runs the application until SIGINT or
// SIGTERM.
func Run(cfgFile string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.File.Path)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
