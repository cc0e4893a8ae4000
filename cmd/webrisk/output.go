package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/webrisk/internal/config"
	"github.com/nao1215/webrisk/internal/database"
	"github.com/nao1215/webrisk/internal/fetch"
	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/nao1215/webrisk/internal/report"
	"github.com/spf13/cobra"
)

// addOutputFlags registers the flags shared by commands that render panels.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "",
		"Output format: "+strings.Join(report.Formats(), ", ")+" (default from config, else text)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file, or into this directory when rendering several reports")
	cmd.Flags().Bool("full-page", false,
		"Wrap HTML output in a complete document")
	cmd.Flags().IntP("batch", "b", 0,
		"Number of reports rendered concurrently (default from config)")
}

// applyOutputFlags overrides cfg with the output flags the user set.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cmd.Flags().Changed("format") {
		if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
			return err
		}
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if cmd.Flags().Changed("full-page") {
		if cfg.FullPage, err = cmd.Flags().GetBool("full-page"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
	}
	return nil
}

// outputFormat validates cfg and returns its format. PDF is binary and
// needs a destination file.
func outputFormat(cfg *config.Config) (report.Format, error) {
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("configuration error: %w", err)
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return "", err
	}
	if format == report.FormatPDF && cfg.ReportFile == "" {
		return "", config.ErrPDFToStdout
	}
	return format, nil
}

// openHistory opens the report history database under cfg.DBDir.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.ReportDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	logger.Debug("history opened", "path", db.Path())
	return db, nil
}

// newFetchClient creates the upstream client from cfg and, when a proxy is
// configured, verifies that it speaks SOCKS5.
func newFetchClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*fetch.Client, error) {
	if err := cfg.RequireAPI(); err != nil {
		return nil, err
	}

	opts := []fetch.Option{
		fetch.WithAPIKey(cfg.APIKey),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}

	client, err := fetch.NewClient(cfg.APIEndpoint, cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	if client.ProxyAddress() != "" {
		status := client.CheckProxy(ctx)
		if err := status.Error(); err != nil {
			return nil, fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s): %w",
				status, client.ProxyAddress(), err)
		}
		logger.Info("proxy connection verified", "address", client.ProxyAddress())
	}
	return client, nil
}

// runJobs renders every job with a pipeline built by factory, writes the
// successful outputs and returns the failures joined.
func runJobs(
	ctx context.Context,
	cmd *cobra.Command,
	cfg *config.Config,
	format report.Format,
	jobs []*pipeline.Job,
	factory func(*pipeline.Job) *pipeline.Pipeline,
	logger *slog.Logger,
) error {
	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)
	if _, err := bp.ProcessBatch(ctx, jobs); err != nil {
		return err
	}

	if err := writeOutputs(cmd.OutOrStdout(), cfg.ReportFile, format, jobs); err != nil {
		return err
	}
	return jobErrors(jobs)
}

// jobErrors joins the errors of failed jobs, each prefixed by the job name.
func jobErrors(jobs []*pipeline.Job) error {
	var errs []error
	for _, job := range jobs {
		if job.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name(), job.Err))
		}
	}
	return errors.Join(errs...)
}

// writeOutputs writes the rendered jobs. With no dest everything goes to
// stdout in input order. A single job is written to dest as a file;
// several jobs are written into dest as a directory, one file per host.
func writeOutputs(stdout io.Writer, dest string, format report.Format, jobs []*pipeline.Job) error {
	var done []*pipeline.Job
	for _, job := range jobs {
		if job.Err == nil && job.Output != nil {
			done = append(done, job)
		}
	}

	switch {
	case dest == "":
		for _, job := range done {
			if _, err := stdout.Write(job.Output); err != nil {
				return err
			}
		}
		return nil
	case len(jobs) == 1:
		if len(done) == 0 {
			return nil
		}
		if err := writeFile(dest, done[0].Output); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", dest)
		return nil
	default:
		used := make(map[string]int)
		for _, job := range done {
			name := outputFileName(job, format, used)
			path := filepath.Join(dest, name)
			if err := writeFile(path, job.Output); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Report written to %s\n", path)
		}
		return nil
	}
}

// outputFileName derives a file name from the job's host, adding a
// numeric suffix when the same host appears more than once.
func outputFileName(job *pipeline.Job, format report.Format, used map[string]int) string {
	base := job.URL
	if job.Panel != nil && job.Panel.Host != "" {
		base = job.Panel.Host
	}
	base = sanitizeFileName(base)
	if base == "" {
		base = "report"
	}

	used[base]++
	if n := used[base]; n > 1 {
		base += "-" + strconv.Itoa(n)
	}
	return base + format.Extension()
}

// sanitizeFileName keeps letters, digits, dots, dashes and underscores.
func sanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

// writeFile writes data to path, creating parent directories.
// Reports are written with owner-only permissions.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
