// Package cli implements the kitchenstock command line.
package cli

import (
	"fmt"
	"os"

	"kitchenstock/internal/config"
	"kitchenstock/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Verbose    bool
	Version    string
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "kitchenstock",
		Short:         "Multi-tenant kitchen inventory service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigFile == "" {
				return nil
			}
			if _, err := os.Stat(opts.ConfigFile); err != nil {
				return fmt.Errorf("config file: %w", err)
			}
			return os.Setenv(config.EnvConfigFile, opts.ConfigFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to a TOML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// load reads the configuration and builds the process logger.
func (o *RootOptions) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := logger.ParseLevel(cfg.App.LogLevel)
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	format := cfg.App.LogFormat
	if cfg.App.IsDev() && format == "" {
		format = "console"
	}
	log := logger.New(logger.Options{
		ServiceName: "kitchenstock",
		Level:       level,
		Format:      format,
	})
	return cfg, log, nil
}
