// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2026 dockyard contributors
// https://github.com/Jailtonfonseca/dockyard

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jailtonfonseca/dockyard/internal/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dockyard",
	Short: "App store for Docker containers",
	Long:  `dockyard serves a catalog of container app templates aggregated from Portainer-compatible sources and installs them on the local Docker daemon.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cfgFile)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		app.PrintVersion()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		fmt.Println("Configuration is valid")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg.PrintMasked()
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Template source commands",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective template sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ListSources(cfgFile)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the template catalog once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RefreshOnce(cmd.Context(), cfgFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: /etc/dockyard/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(refreshCmd)

	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)

	sourcesCmd.AddCommand(sourcesListCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
