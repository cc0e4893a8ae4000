package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render report files as detail panels",
		Long: `Render reads website reports from JSON or YAML files and renders
their detail panels.

The target URL of each report defaults to the file name without its
extension, so example.com.json describes example.com. Use --url to set it
when rendering a single file.

Examples:
  # Print a text panel
  webrisk render example.com.json

  # Write an HTML document
  webrisk render --format html --full-page -o panel.html example.com.json

  # Render several reports into a directory, four at a time
  webrisk render -f markdown -o reports/ -b 4 a.json b.yaml c.json

  # Keep the rendered reports in history
  webrisk render --save example.com.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRenderCmd,
	}

	addOutputFlags(cmd)
	cmd.Flags().StringP("url", "u", "",
		"Target URL of the report (only with a single file)")
	cmd.Flags().Bool("save", false,
		"Save the reports to history")

	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("save") {
		if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
			return err
		}
	}
	target, err := cmd.Flags().GetString("url")
	if err != nil {
		return err
	}
	if target != "" && len(args) > 1 {
		return errors.New("--url can only be used with a single report file")
	}

	format, err := outputFormat(cfg)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd)
	defer cancel()

	rc := pipeline.RenderConfig{
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
	for i, path := range args {
		jobs[i] = pipeline.NewFileJob(path, target)
	}

	logger.Info("rendering reports", "files", len(jobs), "format", format, "save", cfg.SaveToDB)
	return runJobs(ctx, cmd, cfg, format, jobs, func(*pipeline.Job) *pipeline.Pipeline {
		return pipeline.RenderPipeline(true, rc)
	}, logger)
}
