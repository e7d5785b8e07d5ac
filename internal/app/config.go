// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTemplateSource is used when no sources are configured at all.
const DefaultTemplateSource = "https://raw.githubusercontent.com/Qballjos/portainer_templates/master/Template/template.json"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Docker    DockerConfig    `mapstructure:"docker"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	CORSOrigins     string        `mapstructure:"cors_origins"`
}

// DockerConfig holds Docker daemon connection configuration.
type DockerConfig struct {
	Host       string        `mapstructure:"host"`
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TemplatesConfig holds template catalog configuration.
type TemplatesConfig struct {
	// Sources are the fallback source URLs, used while no user list is
	// persisted.
	Sources []string `mapstructure:"sources"`

	// RefreshInterval is the period of the scheduled catalog refresh.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`

	// FetchTimeout bounds one source fetch.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// RefreshOnStart triggers an eager refresh during startup.
	RefreshOnStart bool `mapstructure:"refresh_on_start"`
}

// DeployConfig holds template installation configuration.
type DeployConfig struct {
	PullTimeout time.Duration `mapstructure:"pull_timeout"`
}

// StorageConfig holds local storage configuration.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"file"`
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/dockyard")
		v.AddConfigPath("$HOME/.dockyard")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DOCKYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Dual-binding: DOCKYARD_ prefixed (canonical) plus the bare names
	// the Python predecessor read, for drop-in container deployments.
	_ = v.BindEnv("templates.sources", "DOCKYARD_TEMPLATE_SOURCES", "TEMPLATE_SOURCES_URL")
	_ = v.BindEnv("docker.host", "DOCKYARD_DOCKER_HOST", "DOCKER_HOST")
	_ = v.BindEnv("storage.path", "DOCKYARD_STORAGE_PATH", "APP_DATA_DIR")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file, proceed with env vars and defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Sources may arrive as one comma-separated string from env.
	cfg.Templates.Sources = splitSources(cfg.Templates.Sources)

	return &cfg, nil
}

// splitSources expands comma-separated entries and drops empties.
func splitSources(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, s := range strings.Split(entry, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "16m")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.cors_origins", "")

	// Docker
	v.SetDefault("docker.host", "unix:///var/run/docker.sock")
	v.SetDefault("docker.api_version", "")
	v.SetDefault("docker.timeout", "30s")

	// Templates
	v.SetDefault("templates.sources", []string{DefaultTemplateSource})
	v.SetDefault("templates.refresh_interval", "4h")
	v.SetDefault("templates.fetch_timeout", "10s")
	v.SetDefault("templates.refresh_on_start", true)

	// Deploy
	v.SetDefault("deploy.pull_timeout", "10m")

	// Storage
	v.SetDefault("storage.path", "/var/lib/dockyard")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate validates the configuration.
// Collects all errors so the operator can fix them in one pass.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port: %d is not a valid port (1-65535)", c.Server.Port))
	}

	checkPositive := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %s", name, d))
		}
	}
	checkPositive("server.read_timeout", c.Server.ReadTimeout)
	checkPositive("server.write_timeout", c.Server.WriteTimeout)
	checkPositive("server.shutdown_timeout", c.Server.ShutdownTimeout)
	checkPositive("server.request_timeout", c.Server.RequestTimeout)
	checkPositive("templates.refresh_interval", c.Templates.RefreshInterval)
	checkPositive("templates.fetch_timeout", c.Templates.FetchTimeout)
	checkPositive("deploy.pull_timeout", c.Deploy.PullTimeout)
	checkPositive("docker.timeout", c.Docker.Timeout)

	if c.Docker.Host == "" {
		errs = append(errs, "docker.host is required")
	}
	if c.Storage.Path == "" {
		errs = append(errs, "storage.path is required")
	}

	if c.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			errs = append(errs, fmt.Sprintf("logging.level: %q is not valid (debug, info, warn, error)", c.Logging.Level))
		}
	}
	if c.Logging.Format != "" {
		validFormats := map[string]bool{"json": true, "text": true, "console": true}
		if !validFormats[strings.ToLower(c.Logging.Format)] {
			errs = append(errs, fmt.Sprintf("logging.format: %q is not valid (json, text, console)", c.Logging.Format))
		}
	}
	if c.Logging.Output != "" {
		validOutputs := map[string]bool{"stdout": true, "stderr": true, "file": true}
		if !validOutputs[strings.ToLower(c.Logging.Output)] {
			errs = append(errs, fmt.Sprintf("logging.output: %q is not valid (stdout, stderr, file)", c.Logging.Output))
		}
		if strings.ToLower(c.Logging.Output) == "file" && c.Logging.File.Path == "" {
			errs = append(errs, "logging.file.path is required when logging.output is file")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}

// PrintMasked prints the effective configuration for operators.
func (c *Config) PrintMasked() {
	fmt.Printf("Server: %s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Printf("Docker Host: %s\n", c.Docker.Host)
	fmt.Printf("Storage Path: %s\n", c.Storage.Path)
	fmt.Printf("Template Sources: %d configured\n", len(c.Templates.Sources))
	for _, src := range c.Templates.Sources {
		fmt.Printf("  - %s\n", src)
	}
	fmt.Printf("Refresh Interval: %s\n", c.Templates.RefreshInterval)
	fmt.Printf("Fetch Timeout: %s\n", c.Templates.FetchTimeout)
	fmt.Printf("Pull Timeout: %s\n", c.Deploy.PullTimeout)
	fmt.Printf("Log Level: %s\n", c.Logging.Level)
	fmt.Printf("Log Format: %s\n", c.Logging.Format)
}
