package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/webrisk/internal/database"
	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/nao1215/webrisk/internal/view"
	"github.com/spf13/cobra"
)

// historyTimeLayout is how stored timestamps are listed.
const historyTimeLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List, show and compare stored reports",
		Long: `History lists the reports kept in the local history database.

Without arguments it lists every stored host. With a URL it lists the
reports stored for that URL, newest first.

Examples:
  # List stored hosts
  webrisk history

  # List reports for a URL
  webrisk history https://example.com

  # Re-render a stored report as HTML
  webrisk history --show 42 -f html -o panel.html

  # Show what changed between the two latest reports of a URL
  webrisk history --diff https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	addOutputFlags(cmd)
	cmd.Flags().Int64("show", 0,
		"Re-render the stored report with this ID")
	cmd.Flags().Bool("diff", false,
		"Compare the two latest reports of the URL")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of reports to list (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	var target string
	if len(args) == 1 {
		target = args[0]
	}
	if diff && target == "" {
		return errors.New("--diff requires a URL")
	}

	logger := setupLogger(cmd, cfg.Verbose)
	ctx, cancel := signalContext(cmd)
	defer cancel()

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	switch {
	case showID > 0:
		format, err := outputFormat(cfg)
		if err != nil {
			return err
		}
		rec, err := db.GetReport(ctx, showID)
		if err != nil {
			return err
		}
		job := pipeline.NewJob(rec.URL)
		job.Report = rec.Report
		rc := pipeline.RenderConfig{
			View:     viewOptions(cfg),
			Format:   format,
			FullPage: cfg.FullPage,
			Logger:   logger,
		}
		return runJobs(ctx, cmd, cfg, format, []*pipeline.Job{job}, func(*pipeline.Job) *pipeline.Pipeline {
			return pipeline.RenderPipeline(false, rc)
		}, logger)
	case diff:
		return diffLatest(ctx, out, db, target, viewOptions(cfg))
	case target != "":
		return listReports(ctx, out, db, target, limit)
	default:
		return listHosts(ctx, out, db)
	}
}

// listHosts prints every host in history.
func listHosts(ctx context.Context, out io.Writer, db *database.ReportDB) error {
	hosts, err := db.ListHosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list hosts: %w", err)
	}
	if len(hosts) == 0 {
		fmt.Fprintln(out, "No reports stored yet.")
		return nil
	}

	fmt.Fprintf(out, "Stored hosts (%d):\n\n", len(hosts))
	fmt.Fprintf(out, "  %-40s  %-7s  %s\n", "Host", "Reports", "Last fetched")
	for _, h := range hosts {
		fmt.Fprintf(out, "  %-40s  %-7d  %s\n",
			h.Host, h.Reports, h.LastFetched.Local().Format(historyTimeLayout))
	}
	return nil
}

// listReports prints the stored reports of one URL.
func listReports(ctx context.Context, out io.Writer, db *database.ReportDB, target string, limit int) error {
	metas, err := db.History(ctx, target, limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(metas) == 0 {
		fmt.Fprintf(out, "No reports stored for %s\n", target)
		return nil
	}

	fmt.Fprintf(out, "Report history for %s (%d reports):\n\n", target, len(metas))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %s\n", "ID", "Fetched", "Risk", "Tier")
	for _, m := range metas {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6s  %s\n",
			m.ID, m.FetchedAt.Local().Format(historyTimeLayout), formatRisk(m.Risk), m.Tier)
	}
	return nil
}

// diffLatest compares the two most recent reports of target.
func diffLatest(ctx context.Context, out io.Writer, db *database.ReportDB, target string, opts view.Options) error {
	metas, err := db.History(ctx, target, 2)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(metas) < 2 {
		return fmt.Errorf("need at least two stored reports for %s to compare, found %d", target, len(metas))
	}

	currRec, err := db.GetReport(ctx, metas[0].ID)
	if err != nil {
		return err
	}
	prevRec, err := db.GetReport(ctx, metas[1].ID)
	if err != nil {
		return err
	}

	c := view.Compare(
		view.Build(prevRec.Report, prevRec.URL, opts),
		view.Build(currRec.Report, currRec.URL, opts),
	)
	printComparison(out, target, prevRec.ReportMeta, currRec.ReportMeta, c)
	return nil
}

// printComparison writes a text summary of c.
func printComparison(out io.Writer, target string, prev, curr database.ReportMeta, c view.Comparison) {
	fmt.Fprintf(out, "Report Comparison: %s\n", target)
	fmt.Fprintf(out, "\nPrevious report: #%d  %s\n", prev.ID, prev.FetchedAt.Local().Format(historyTimeLayout))
	fmt.Fprintf(out, "Current report:  #%d  %s\n", curr.ID, curr.FetchedAt.Local().Format(historyTimeLayout))

	fmt.Fprintf(out, "\nRisk: %s (%s) -> %s (%s)  %s\n",
		formatRisk(c.Previous.Score), c.Previous.Label,
		formatRisk(c.Current.Score), c.Current.Label,
		formatDelta(c.Delta, c.Direction))

	section := func(title string, items []string, marker string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(out, "\n%s (%d):\n", title, len(items))
		for _, item := range items {
			fmt.Fprintf(out, "  %s %s\n", marker, item)
		}
	}
	section("New categories", c.AddedCategories, "+")
	section("Removed categories", c.RemovedCategories, "-")
	section("Newly failed checks", c.NewlyFailed, "+")
	section("Newly passed checks", c.NewlyPassed, "-")
	section("New blacklist detections", c.NewDetections, "+")
	section("Cleared blacklist detections", c.ClearedDetections, "-")

	if !c.Changed() {
		fmt.Fprintln(out, "\nNo changes besides the score.")
	}
}

func formatRisk(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// formatDelta renders the score change, e.g. "(+12, worsened)".
func formatDelta(delta *float64, dir view.Direction) string {
	if delta == nil {
		return "(" + string(dir) + ")"
	}
	s := strconv.FormatFloat(*delta, 'f', -1, 64)
	if *delta > 0 {
		s = "+" + s
	}
	return "(" + strings.Join([]string{s, string(dir)}, ", ") + ")"
}
