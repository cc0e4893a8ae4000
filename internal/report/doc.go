// Package report renders a view.Panel into its output formats.
//
// This package contains writers for different output formats:
//   - HTMLWriter: the panel markup with scoped styling, optionally as a full page
//   - MarkdownWriter: GitHub Flavored Markdown with alerts and a pie chart
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: the panel as structured JSON
//   - PDFWriter: a single-page PDF summary
//
// Writers never compute anything themselves; all derived values come from
// the view package, so the same panel always renders to the same bytes.
package report
