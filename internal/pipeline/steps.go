package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/webrisk/internal/fetch"
	"github.com/nao1215/webrisk/internal/model"
	"github.com/nao1215/webrisk/internal/report"
	"github.com/nao1215/webrisk/internal/view"
)

// ErrNoReport is returned by steps that need a report when none was loaded.
var ErrNoReport = errors.New("job has no report")

// Fetcher retrieves a report from the upstream API.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.WebsiteReport, error)
}

// Saver stores a report in history.
type Saver interface {
	SaveReport(ctx context.Context, url string, report *model.WebsiteReport) (int64, bool, error)
}

// LoadStep reads the job's report from its Source file.
type LoadStep struct{}

// NewLoadStep creates a step that loads reports from disk.
func NewLoadStep() *LoadStep {
	return &LoadStep{}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(_ context.Context, job *Job) error {
	if job.Source == "" {
		return errors.New("job has no source file")
	}
	r, err := fetch.LoadFile(job.Source)
	if err != nil {
		return err
	}
	job.Report = r
	return nil
}

// FetchStep retrieves the job's report from the upstream API.
type FetchStep struct {
	fetcher Fetcher
}

// NewFetchStep creates a step that fetches reports with fetcher.
func NewFetchStep(fetcher Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	r, err := s.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		return err
	}
	job.Report = r
	return nil
}

// SaveStep records the job's report in history.
type SaveStep struct {
	saver  Saver
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSaveStep creates a step that stores reports with saver.
func NewSaveStep(saver Saver, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{saver: saver, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, job *Job) error {
	if job.Report == nil {
		return ErrNoReport
	}
	id, saved, err := s.saver.SaveReport(ctx, job.URL, job.Report)
	if err != nil {
		return err
	}
	job.RecordID = id
	job.Saved = saved
	if !saved {
		s.logger.Debug("report unchanged, history not updated", "url", job.URL, "id", id)
	}
	return nil
}

// BuildStep derives the panel view model.
type BuildStep struct {
	opts   view.Options
	logger *slog.Logger
}

// BuildStepOption configures a BuildStep.
type BuildStepOption func(*BuildStep)

// WithBuildLogger sets a custom logger for the build step.
func WithBuildLogger(logger *slog.Logger) BuildStepOption {
	return func(s *BuildStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBuildStep creates a step that builds panels with opts.
func NewBuildStep(opts view.Options, stepOpts ...BuildStepOption) *BuildStep {
	s := &BuildStep{opts: opts, logger: slog.Default()}
	for _, opt := range stepOpts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *BuildStep) Name() string {
	return "build"
}

// Do executes the build step. Unmapped flags are logged at debug level.
func (s *BuildStep) Do(_ context.Context, job *Job) error {
	if job.Report == nil {
		return ErrNoReport
	}
	if keys := view.UnmappedCategories(job.Report.Categories); len(keys) > 0 {
		s.logger.Debug("dropping unmapped category flags", "url", job.URL, "keys", keys)
	}
	if keys := view.UnmappedChecks(job.Report.SecurityChecks); len(keys) > 0 {
		s.logger.Debug("dropping unmapped security checks", "url", job.URL, "keys", keys)
	}
	job.Panel = view.Build(job.Report, job.URL, s.opts)
	return nil
}

// RenderStep renders the job's panel into job.Output.
type RenderStep struct {
	format   report.Format
	fullPage bool
}

// NewRenderStep creates a step that renders panels in format.
func NewRenderStep(format report.Format, fullPage bool) *RenderStep {
	return &RenderStep{format: format, fullPage: fullPage}
}

// Name returns the step name.
func (s *RenderStep) Name() string {
	return "render"
}

// Do executes the render step.
func (s *RenderStep) Do(_ context.Context, job *Job) error {
	if job.Panel == nil {
		return errors.New("job has no panel")
	}
	var buf bytes.Buffer
	w, err := report.NewWriter(s.format, &buf, s.fullPage)
	if err != nil {
		return err
	}
	if _, err := w.Write(job.Panel); err != nil {
		return fmt.Errorf("failed to render %s: %w", job.URL, err)
	}
	job.Output = buf.Bytes()
	return nil
}

// RenderConfig holds what RenderPipeline needs to assemble its steps.
type RenderConfig struct {
	// Fetcher is used when a job has no Source. Nil disables fetching.
	Fetcher Fetcher

	// Saver records reports in history. Nil disables saving.
	Saver Saver

	// View configures panel building.
	View view.Options

	// Format and FullPage configure rendering.
	Format   report.Format
	FullPage bool

	Logger *slog.Logger
}

// RenderPipeline creates the standard pipeline: load (or fetch), save,
// build, render.
func RenderPipeline(fromFile bool, cfg RenderConfig, opts ...Option) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := New(append([]Option{WithLogger(logger)}, opts...)...)

	if fromFile {
		p.AddStep(NewLoadStep())
	} else if cfg.Fetcher != nil {
		p.AddStep(NewFetchStep(cfg.Fetcher))
	}
	if cfg.Saver != nil {
		p.AddStep(NewSaveStep(cfg.Saver, WithSaveLogger(logger)))
	}
	p.AddSteps(
		NewBuildStep(cfg.View, WithBuildLogger(logger)),
		NewRenderStep(cfg.Format, cfg.FullPage),
	)
	return p
}
