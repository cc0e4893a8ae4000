package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webrisk/internal/view"
)

// Writer defines the interface for panel output.
type Writer interface {
	// Write renders the panel to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(panel *view.Panel) (int, error)
}

// Format identifies an output format.
type Format string

// Supported output formats.
const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatPDF      Format = "pdf"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats returns every supported format name.
func Formats() []string {
	return []string{string(FormatHTML), string(FormatMarkdown), string(FormatText), string(FormatJSON), string(FormatPDF)}
}

// ParseFormat converts a user-supplied name into a Format.
// "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatPDF:
		return ".pdf"
	default:
		return ".txt"
	}
}

// NewWriter returns the Writer for f. fullPage only affects HTML output.
func NewWriter(f Format, output io.Writer, fullPage bool) (Writer, error) {
	switch f {
	case FormatHTML:
		return NewHTMLWriter(output, WithFullPage(fullPage)), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatPDF:
		return NewPDFWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the panel with every configured Writer.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(panel *view.Panel) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(panel)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
