package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/nao1215/webrisk/internal/view"
)

// PDFWriter outputs the panel as a single A4 page.
// The header band and the verdict colours follow the risk tier.
type PDFWriter struct {
	baseWriter

	// created is stamped into the document info dictionary.
	// It is fixed so identical panels produce identical files.
	created time.Time
}

// PDFWriterOption configures a PDFWriter.
type PDFWriterOption func(*PDFWriter)

// WithCreationDate sets the creation date recorded in the document.
func WithCreationDate(t time.Time) PDFWriterOption {
	return func(w *PDFWriter) {
		w.created = t
	}
}

// NewPDFWriter creates a PDFWriter that outputs to the given writer.
func NewPDFWriter(output io.Writer, opts ...PDFWriterOption) *PDFWriter {
	w := &PDFWriter{
		baseWriter: newBaseWriter(output),
		created:    time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the panel to PDF.
func (w *PDFWriter) Write(panel *view.Panel) (int, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(w.created)
	pdf.SetModificationDate(w.created)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Website Report: "+panel.Host, true)
	pdf.SetCreator("webrisk", true)
	pdf.AddPage()

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w.writeBanner(pdf, tr, panel)
	w.writeOverview(pdf, tr, panel)
	w.writeList(pdf, tr, "Categories", panel.Categories, "No categories flagged")
	w.writeChecks(pdf, tr, panel)
	w.writeServer(pdf, tr, panel)
	w.writeBlacklist(pdf, tr, panel)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return 0, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return w.output.Write(buf.Bytes())
}

func (w *PDFWriter) writeBanner(pdf *fpdf.Fpdf, tr func(string) string, panel *view.Panel) {
	c := tierColor(panel.Risk.Tier)
	pdf.SetFillColor(c[0], c[1], c[2])
	pdf.Rect(10, 10, 190, 28, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(14, 13)
	pdf.Cell(120, 10, tr(panel.Host))

	pdf.SetFont("Arial", "B", 22)
	pdf.SetXY(140, 13)
	pdf.CellFormat(56, 10, formatPercent(panel.Risk.Safety), "", 0, "R", false, 0, "")

	pdf.SetFont("Courier", "", 9)
	pdf.SetXY(14, 25)
	pdf.Cell(120, 8, tr(panel.URL))

	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(140, 25)
	pdf.CellFormat(56, 8, tr(panel.Risk.Label), "", 0, "R", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(10, 42)
}

func (w *PDFWriter) heading(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
}

// row writes a label and value pair with optional fill.
func (w *PDFWriter) row(pdf *fpdf.Fpdf, tr func(string) string, label, value string, fill bool) {
	pdf.SetFillColor(241, 245, 249)
	pdf.CellFormat(50, 7, tr(label), "", 0, "", fill, 0, "")
	pdf.CellFormat(0, 7, tr(value), "", 1, "", fill, 0, "")
}

func (w *PDFWriter) writeOverview(pdf *fpdf.Fpdf, tr func(string) string, panel *view.Panel) {
	w.heading(pdf, "Overview")
	rows := [][2]string{
		{"Domain", panel.Domain},
		{"Risk Score", formatScore(panel.Risk.Score)},
		{"Risk Tier", panel.Risk.Label},
		{"Redirect", redirectText(panel.Redirect)},
	}
	for i, r := range rows {
		w.row(pdf, tr, r[0], r[1], i%2 == 0)
	}
}

func (w *PDFWriter) writeList(pdf *fpdf.Fpdf, tr func(string) string, title string, items []string, empty string) {
	w.heading(pdf, title)
	if len(items) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 7, empty)
		pdf.Ln(7)
		return
	}
	pdf.Cell(0, 7, tr(strings.Join(items, ", ")))
	pdf.Ln(7)
}

func (w *PDFWriter) writeChecks(pdf *fpdf.Fpdf, tr func(string) string, panel *view.Panel) {
	w.heading(pdf, fmt.Sprintf("Security Checks (%d/%d passed)", panel.Checks.PassedCount(), panel.Checks.Total()))
	if panel.Checks.Total() == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 7, "No security checks available")
		pdf.Ln(7)
		return
	}
	pdf.SetTextColor(220, 38, 38)
	for _, c := range panel.Checks.FailedChecks {
		pdf.CellFormat(0, 6, tr("FAIL  "+c), "", 1, "", false, 0, "")
	}
	pdf.SetTextColor(22, 163, 74)
	for _, c := range panel.Checks.PassedChecks {
		pdf.CellFormat(0, 6, tr("PASS  "+c), "", 1, "", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

func (w *PDFWriter) writeServer(pdf *fpdf.Fpdf, tr func(string) string, panel *view.Panel) {
	w.heading(pdf, "Server")
	if len(panel.Server) == 0 && len(panel.Locations) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 7, "No server details")
		pdf.Ln(7)
		return
	}
	for i, f := range panel.Server {
		w.row(pdf, tr, f.Label, f.Value, i%2 == 0)
	}
	if len(panel.Locations) > 0 {
		codes := make([]string, len(panel.Locations))
		for i, l := range panel.Locations {
			codes[i] = l.CountryCode
		}
		w.row(pdf, tr, "Geolocation", strings.Join(codes, ", "), len(panel.Server)%2 == 0)
	}
}

func (w *PDFWriter) writeBlacklist(pdf *fpdf.Fpdf, tr func(string) string, panel *view.Panel) {
	w.heading(pdf, fmt.Sprintf("Blacklists (%d/%d detections)", panel.Blacklist.Detections, panel.Blacklist.Total))
	if len(panel.Blacklist.Engines) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 7, "No blacklist engines queried")
		pdf.Ln(7)
		return
	}
	pdf.SetFont("Courier", "", 9)
	for _, e := range panel.Blacklist.Engines {
		if e.Detected {
			pdf.SetFillColor(254, 226, 226)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(140, 6, tr(e.Name), "B", 0, "", true, 0, "")
		pdf.CellFormat(0, 6, detectedText(e.Detected), "B", 1, "R", true, 0, "")
	}
}
