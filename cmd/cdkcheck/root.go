package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Nelson-Lamounier/cdk-monitoring/config"
)

var (
	version = "0.1.0"

	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "cdkcheck",
		Short: "Policy checks for synthesized CloudFormation templates",
		Long: `cdkcheck - Policy checks for synthesized CloudFormation templates

cdkcheck evaluates a catalog of security and compliance rules against
the resources of a synthesized stack, before anything is deployed.
Network exposure, encryption, IAM hygiene, log retention and backup
posture are checked per resource; custom Rego policies extend the
built-in catalog.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`cdkcheck {{.Version}}
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to cdkcheck.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig merges the optional config file with command line flags.
// Flags win when set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	return cfg, nil
}
