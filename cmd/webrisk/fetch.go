package main

import (
	"github.com/nao1215/webrisk/internal/config"
	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/nao1215/webrisk/internal/view"
	"github.com/spf13/cobra"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url...>",
		Short: "Fetch reports from the reputation API and render them",
		Long: `Fetch requests a fresh report for each URL from the configured
reputation API, saves it to history and renders its detail panel.

The endpoint and key come from .webrisk (api.endpoint, api.key) or from
--endpoint and the WEBRISK_API_KEY environment variable.

Examples:
  # Fetch and print a text panel
  webrisk fetch https://example.com

  # Fetch through a SOCKS5 proxy without saving
  webrisk fetch --proxy 127.0.0.1:1080 --no-save https://example.com

  # Fetch several sites into a directory of HTML pages
  webrisk fetch -f html --full-page -o panels/ example.com example.org`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFetchCmd,
	}

	addOutputFlags(cmd)
	addAPIFlags(cmd)
	cmd.Flags().Bool("no-save", false,
		"Do not save fetched reports to history")

	return cmd
}

// addAPIFlags registers the flags that configure the upstream client.
func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", "",
		"Reputation API endpoint (overrides api.endpoint)")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address, e.g. 127.0.0.1:1080 (overrides api.proxy)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each API request")
}

// applyAPIFlags overrides cfg with the API flags the user set.
func applyAPIFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cmd.Flags().Changed("endpoint") {
		if cfg.APIEndpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("proxy") {
		if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return err
		}
	}
	return nil
}

// viewOptions returns the panel options configured in cfg.
func viewOptions(cfg *config.Config) view.Options {
	return view.Options{Images: cfg.Images}
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyAPIFlags(cmd, cfg); err != nil {
		return err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noSave

	format, err := outputFormat(cfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd)
	defer cancel()

	client, err := newFetchClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	rc := pipeline.RenderConfig{
		Fetcher:  client,
		View:     viewOptions(cfg),
		Format:   format,
		FullPage: cfg.FullPage,
		Logger:   logger,
	}
	if cfg.SaveToDB {
		db, err := openHistory(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		rc.Saver = db
	}

	jobs := make([]*pipeline.Job, len(args))
	for i, target := range args {
		jobs[i] = pipeline.NewJob(target)
	}

	logger.Info("fetching reports",
		"targets", len(jobs),
		"endpoint", cfg.APIEndpoint,
		"proxy", cfg.ProxyAddress,
		"save", cfg.SaveToDB,
	)
	return runJobs(ctx, cmd, cfg, format, jobs, func(*pipeline.Job) *pipeline.Pipeline {
		return pipeline.RenderPipeline(false, rc)
	}, logger)
}
