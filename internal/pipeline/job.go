package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/nao1215/webrisk/internal/model"
	"github.com/nao1215/webrisk/internal/view"
)

// Job is the unit of work passed through a Pipeline.
type Job struct {
	// Source is the report file to load. Empty for fetched jobs.
	Source string

	// URL is the target the report describes.
	URL string

	// Report is the raw report, set by a load or fetch step.
	Report *model.WebsiteReport

	// Panel is the view model, set by BuildStep.
	Panel *view.Panel

	// Output holds the rendered bytes, set by RenderStep.
	Output []byte

	// RecordID is the history row id, set by SaveStep.
	RecordID int64

	// Saved is false when SaveStep found an identical stored report.
	Saved bool

	// Err is the error that stopped the job, if any.
	Err error

	// PerformedSteps lists the steps that ran, in order.
	PerformedSteps []string
}

// NewJob creates a job for a target URL whose report will be fetched.
func NewJob(url string) *Job {
	return &Job{URL: strings.TrimSpace(url)}
}

// NewFileJob creates a job for a report file. When url is empty the file
// name without its extension is used, so "example.com.json" describes
// "example.com".
func NewFileJob(path, url string) *Job {
	url = strings.TrimSpace(url)
	if url == "" {
		base := filepath.Base(path)
		url = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &Job{Source: path, URL: url}
}

// Name identifies the job in logs.
func (j *Job) Name() string {
	if j.Source != "" {
		return j.Source
	}
	return j.URL
}
