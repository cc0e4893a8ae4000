package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webrisk/internal/view"
)

// SimpleWriter outputs a human-readable text panel.
// This format is designed for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections without data are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the panel in human-readable format.
func (w *SimpleWriter) Write(panel *view.Panel) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, panel)
	w.writeCategories(&sb, panel)
	w.writeChecks(&sb, panel)
	w.writeServer(&sb, panel)
	w.writeBlacklist(&sb, panel)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, panel *view.Panel) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          WEBSITE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Host:       %s\n", panel.Host)
	fmt.Fprintf(sb, "URL:        %s\n", panel.URL)
	if panel.Domain != "" && panel.Domain != panel.Host {
		fmt.Fprintf(sb, "Domain:     %s\n", panel.Domain)
	}
	fmt.Fprintf(sb, "Safety:     %s\n", formatPercent(panel.Risk.Safety))
	fmt.Fprintf(sb, "Risk:       %s (%s)\n", formatScore(panel.Risk.Score), panel.Risk.Label)
	fmt.Fprintf(sb, "Redirect:   %s\n", redirectText(panel.Redirect))
	sb.WriteString("\n")
}

// section writes a section title framed by rules.
func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeCategories(sb *strings.Builder, panel *view.Panel) {
	if len(panel.Categories) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "CATEGORIES")
	if len(panel.Categories) == 0 {
		sb.WriteString("  No categories flagged\n\n")
		return
	}
	for _, c := range panel.Categories {
		fmt.Fprintf(sb, "  [*] %s\n", c)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeChecks(sb *strings.Builder, panel *view.Panel) {
	if panel.Checks.Total() == 0 && !w.showEmpty {
		return
	}
	w.section(sb, fmt.Sprintf("SECURITY CHECKS (%d/%d passed)", panel.Checks.PassedCount(), panel.Checks.Total()))
	if panel.Checks.Total() == 0 {
		sb.WriteString("  No security checks available\n\n")
		return
	}
	for _, c := range panel.Checks.FailedChecks {
		fmt.Fprintf(sb, "  [FAIL] %s\n", c)
	}
	for _, c := range panel.Checks.PassedChecks {
		fmt.Fprintf(sb, "  [PASS] %s\n", c)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeServer(sb *strings.Builder, panel *view.Panel) {
	if len(panel.Server) == 0 && len(panel.Locations) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "SERVER")
	if len(panel.Server) == 0 && len(panel.Locations) == 0 {
		sb.WriteString("  No server details\n\n")
		return
	}
	for _, f := range panel.Server {
		fmt.Fprintf(sb, "  %-12s %s\n", f.Label+":", f.Value)
	}
	if len(panel.Locations) > 0 {
		codes := make([]string, len(panel.Locations))
		for i, l := range panel.Locations {
			codes[i] = l.CountryCode
		}
		fmt.Fprintf(sb, "  %-12s %s\n", "Geolocation:", strings.Join(codes, ", "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBlacklist(sb *strings.Builder, panel *view.Panel) {
	if panel.Blacklist.Total == 0 && !w.showEmpty {
		return
	}
	w.section(sb, fmt.Sprintf("BLACKLISTS (%d/%d detections)", panel.Blacklist.Detections, panel.Blacklist.Total))
	if len(panel.Blacklist.Engines) == 0 {
		sb.WriteString("  No blacklist engines queried\n\n")
		return
	}
	for _, e := range panel.Blacklist.Engines {
		marker := "[ ]"
		if e.Detected {
			marker = "[!]"
		}
		fmt.Fprintf(sb, "  %s %-32s %s\n", marker, e.Name, detectedText(e.Detected))
	}
	sb.WriteString("\n")
}
