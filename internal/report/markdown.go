package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/webrisk/internal/view"
)

// MarkdownWriter outputs the panel in GitHub Flavored Markdown.
// This format is designed for documentation, tickets and chat.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the panel in Markdown format.
func (w *MarkdownWriter) Write(panel *view.Panel) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, panel)
	w.writeAlert(md, panel)
	w.writeCategories(md, panel)
	w.writeChecks(md, panel)
	w.writeServer(md, panel)
	w.writeBlacklist(md, panel)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, panel *view.Panel) {
	md.H1("Website Report: " + panel.Host)
	md.PlainText("")

	rows := [][]string{
		{"URL", codeSpan(panel.URL)},
		{"Domain", tableCell(panel.Domain)},
		{"Safety", formatPercent(panel.Risk.Safety)},
		{"Risk Score", formatScore(panel.Risk.Score)},
		{"Risk Tier", panel.Risk.Label},
		{"Redirect", tableCell(redirectText(panel.Redirect))},
	}
	if panel.ScreenshotURL != "" {
		rows = append(rows, []string{"Screenshot", "[view](" + panel.ScreenshotURL + ")"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes a GitHub alert matching the risk tier.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, panel *view.Panel) {
	safety := formatPercent(panel.Risk.Safety)
	switch panel.Risk.Tier {
	case view.TierVeryDangerous:
		md.Cautionf("%s is rated very dangerous (safety %s). Do not visit or submit data.", panel.Host, safety)
	case view.TierDangerous:
		md.Warningf("%s is rated dangerous (safety %s).", panel.Host, safety)
	case view.TierRisky:
		md.Importantf("%s is rated risky (safety %s). Proceed with care.", panel.Host, safety)
	case view.TierModeratelySafe:
		md.Note(panel.Host + " is rated moderately safe (safety " + safety + ").")
	case view.TierSafe:
		md.Tip(panel.Host + " is rated safe (safety " + safety + ").")
	default:
		md.Note("No risk score is available for " + panel.Host + ".")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, panel *view.Panel) {
	md.H2("Categories")
	md.PlainText("")
	if len(panel.Categories) == 0 {
		md.PlainText("No categories flagged.")
		md.PlainText("")
		return
	}
	md.BulletList(panel.Categories...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeChecks(md *markdown.Markdown, panel *view.Panel) {
	md.H2("Security Checks")
	md.PlainText("")
	if panel.Checks.Total() == 0 {
		md.PlainText("No security checks available.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, panel.Checks.Total())
	for _, c := range panel.Checks.FailedChecks {
		rows = append(rows, []string{c, "❌ Failed"})
	}
	for _, c := range panel.Checks.PassedChecks {
		rows = append(rows, []string{c, "✅ Passed"})
	}
	md.PlainTextf("%d of %d checks passed.", panel.Checks.PassedCount(), panel.Checks.Total())
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeServer(md *markdown.Markdown, panel *view.Panel) {
	md.H2("Server")
	md.PlainText("")
	if len(panel.Server) == 0 && len(panel.Locations) == 0 {
		md.PlainText("No server details.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(panel.Server)+1)
	for _, f := range panel.Server {
		rows = append(rows, []string{f.Label, tableCell(f.Value)})
	}
	if len(panel.Locations) > 0 {
		codes := ""
		for i, l := range panel.Locations {
			if i > 0 {
				codes += ", "
			}
			codes += l.CountryCode
		}
		rows = append(rows, []string{"Geolocation", codes})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeBlacklist(md *markdown.Markdown, panel *view.Panel) {
	md.H2("Blacklists")
	md.PlainText("")
	md.PlainTextf("%d detection(s) across %d engine(s).", panel.Blacklist.Detections, panel.Blacklist.Total)
	md.PlainText("")
	if len(panel.Blacklist.Engines) == 0 {
		return
	}

	rows := make([][]string, len(panel.Blacklist.Engines))
	for i, e := range panel.Blacklist.Engines {
		rows[i] = []string{tableCell(e.Name), detectedText(e.Detected)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Engine", "Result"},
		Rows:   rows,
	})
	md.PlainText("")

	detected := view.CountDetected(panel.Blacklist.Engines)
	if detected > 0 {
		w.writePieChart(md, detected, panel.Blacklist.Clean())
	}
}

// writePieChart writes a mermaid pie chart of engine verdicts.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, detected, clean int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Blacklist Verdicts"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Detected", uint64(detected))
	if clean > 0 {
		chart.LabelAndIntValue("Clean", uint64(clean))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [webrisk](https://github.com/nao1215/webrisk)*")
}

// cellReplacer keeps a value inside one table cell.
var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// tableCell escapes pipes and folds line breaks.
func tableCell(s string) string {
	return cellReplacer.Replace(s)
}

// codeSpan renders s as an inline code span for a table cell. The fence is
// one backtick longer than the longest backtick run in s.
func codeSpan(s string) string {
	s = tableCell(s)
	if !strings.Contains(s, "`") {
		return markdown.Code(s)
	}
	longest, run := 0, 0
	for _, r := range s {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + s + " " + fence
}
