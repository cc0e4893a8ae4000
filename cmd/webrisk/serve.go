package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/webrisk/internal/config"
	"github.com/nao1215/webrisk/internal/database"
	"github.com/nao1215/webrisk/internal/fetch"
	"github.com/nao1215/webrisk/internal/log"
	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/nao1215/webrisk/internal/report"
	"github.com/nao1215/webrisk/internal/view"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long in-flight requests may finish after
// an interrupt.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered panels over HTTP",
		Long: `Serve starts a small HTTP server that renders detail panels on demand.

Endpoints:
  GET /panel?url=<target>   Render the latest stored report of target as a
                            full HTML page. Without a stored report, or with
                            fresh=1, the report is fetched from the API and
                            saved. format=markdown|text|json selects another
                            format.
  GET /healthz              Liveness check.

Examples:
  # Serve on the configured address (default 127.0.0.1:8080)
  webrisk serve

  # Serve stored reports only, on another port
  webrisk serve -l 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address host:port (overrides server.listen)")
	cmd.Flags().Bool("json-logs", false,
		"Write logs as JSON lines")
	addAPIFlags(cmd)

	return cmd
}

// reportHistory is the part of the history database the server uses.
type reportHistory interface {
	pipeline.Saver
	LatestReport(ctx context.Context, url string) (*database.ReportRecord, error)
}

// panelServer renders panels for HTTP requests.
type panelServer struct {
	history reportHistory
	fetcher pipeline.Fetcher
	view    view.Options
	logger  *slog.Logger
}

// routes returns the server's request multiplexer.
func (s *panelServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /panel", s.handlePanel)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return s.logRequests(mux)
}

// contentTypes maps the formats the server renders to their media types.
var contentTypes = map[report.Format]string{
	report.FormatHTML:     "text/html; charset=utf-8",
	report.FormatMarkdown: "text/markdown; charset=utf-8",
	report.FormatText:     "text/plain; charset=utf-8",
	report.FormatJSON:     "application/json",
}

func (s *panelServer) handlePanel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := strings.TrimSpace(q.Get("url"))
	if target == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	format := report.FormatHTML
	if name := q.Get("format"); name != "" {
		f, err := report.ParseFormat(name)
		if err != nil || contentTypes[f] == "" {
			http.Error(w, fmt.Sprintf("unsupported format %q", name), http.StatusBadRequest)
			return
		}
		format = f
	}
	fresh := q.Get("fresh") == "1" || q.Get("fresh") == "true"

	ctx := r.Context()
	job := pipeline.NewJob(target)

	if !fresh && s.history != nil {
		rec, err := s.history.LatestReport(ctx, target)
		switch {
		case err == nil:
			job.Report = rec.Report
		case !errors.Is(err, database.ErrReportNotFound):
			s.logger.Error("history lookup failed", "url", target, "error", err)
			http.Error(w, "history lookup failed", http.StatusInternalServerError)
			return
		}
	}

	rc := pipeline.RenderConfig{
		View:     s.view,
		Format:   format,
		FullPage: true,
		Logger:   s.logger,
	}
	if job.Report == nil {
		if s.fetcher == nil {
			http.Error(w, "no stored report for "+target+" and no api endpoint configured", http.StatusNotFound)
			return
		}
		rc.Fetcher = s.fetcher
		if s.history != nil {
			rc.Saver = s.history
		}
	}

	if err := pipeline.RenderPipeline(false, rc).Execute(ctx, job); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "no-store")
	_, _ = bytes.NewReader(job.Output).WriteTo(w)
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	var se *fetch.StatusError
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fetch.ErrEmptyURL):
		return http.StatusBadRequest
	case errors.As(err, &se), errors.Is(err, fetch.ErrBodyTooLarge):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request at info level.
func (s *panelServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"url", r.URL.Query().Get("url"),
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyAPIFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddr, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = config.DefaultListenAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	jsonLogs, err := cmd.Flags().GetBool("json-logs")
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)
	if jsonLogs {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
		slog.SetDefault(logger)
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ps := &panelServer{history: db, view: viewOptions(cfg), logger: logger}
	if cfg.APIEndpoint != "" {
		client, err := newFetchClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		ps.fetcher = client
	} else {
		logger.Warn("no api endpoint configured, serving stored reports only")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           ps.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serveUntilDone(ctx, cmd, srv, logger)
}

// serveUntilDone runs srv until ctx is cancelled, then shuts it down.
func serveUntilDone(ctx context.Context, cmd *cobra.Command, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Serving panels on http://%s (Ctrl+C to stop)\n", srv.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
