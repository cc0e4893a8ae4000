package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/webrisk/internal/view"
)

//go:embed templates/panel.html.tmpl templates/panel.css
var templateFS embed.FS

// panelTemplate is parsed once; html/template is safe for concurrent use
// after parsing.
var panelTemplate = template.Must(
	template.New("panel.html.tmpl").Funcs(template.FuncMap{
		"styles":      styles,
		"percent":     formatPercent,
		"number":      formatScore,
		"width":       meterWidth,
		"verdict":     detectedText,
		"verdictSlug": verdictSlug,
	}).ParseFS(templateFS, "templates/panel.html.tmpl"),
)

// styles returns the scoped panel stylesheet.
func styles() template.CSS {
	data, err := templateFS.ReadFile("templates/panel.css")
	if err != nil {
		return ""
	}
	return template.CSS(data) //nolint:gosec // stylesheet is embedded at build time
}

// meterWidth clamps a percentage to [0, 100] for the meter bar.
func meterWidth(v *float64) string {
	if v == nil {
		return "0"
	}
	w := min(max(*v, 0), 100)
	return strings.TrimSuffix(strconv.FormatFloat(w, 'f', 1, 64), ".0")
}

func verdictSlug(detected bool) string {
	return strings.ToLower(detectedText(detected))
}

// HTMLWriter renders the panel as HTML with its scoped stylesheet.
// By default only the panel fragment is written, ready to be embedded in a
// host page.
type HTMLWriter struct {
	baseWriter

	// fullPage wraps the fragment in a standalone HTML document.
	fullPage bool
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithFullPage makes the writer emit a complete HTML document.
func WithFullPage(full bool) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.fullPage = full
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the panel. Output is buffered so that a template error
// never leaves partial markup behind.
func (w *HTMLWriter) Write(panel *view.Panel) (int, error) {
	name := "panel"
	if w.fullPage {
		name = "page"
	}

	var buf bytes.Buffer
	if err := panelTemplate.ExecuteTemplate(&buf, name, panel); err != nil {
		return 0, fmt.Errorf("failed to render html panel: %w", err)
	}
	return w.output.Write(buf.Bytes())
}
