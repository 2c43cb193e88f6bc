// Package main is the entry point for the mt2mw CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/mt2mw/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := migrateCmd()
	cmd.Version = version
	cmd.SetVersionTemplate(versionText())
	cmd.AddCommand(versionCmd())
	return cmd
}

// loadConfig loads configuration from the .env file, the environment and
// the optional YAML file.
func loadConfig(envFile, configFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile, configFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
