package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/webrisk/internal/config"
	"github.com/nao1215/webrisk/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webrisk.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webrisk",
		Short: "Render website safety report panels",
		Long: `webrisk renders the detail panel of a website safety report.

A report carries blacklist hits, redirects, security-check results, server
geolocation, a risk score and category flags. webrisk turns it into a
display-ready panel and writes it as HTML, Markdown, text, JSON or PDF.

Settings are read from .webrisk in the current directory or your home
directory, then from $XDG_CONFIG_HOME/webrisk/config.yaml. Run
"webrisk init" to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .webrisk in current or home directory)")

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds the base configuration: defaults, then the config
// file, then the environment. Command flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	path := getConfigFlag(cmd)
	cfg.ConfigFilePath = path

	// An explicit path must exist; the default locations are optional.
	found := config.FindConfigFile(path)
	switch {
	case found != "":
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		file.Apply(cfg)
	case path != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// setupLogger creates the sanitizing logger and installs it as default.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}
