// Package main provides the entry point for the webrisk CLI.
//
// webrisk renders the detail panel of a website safety report. Reports are
// read from JSON or YAML files, or fetched from a reputation API, and
// rendered as HTML, Markdown, plain text, JSON or PDF.
//
// Usage:
//
//	webrisk render example.com.json
//	webrisk fetch https://example.com --format html -o panel.html
//	webrisk history example.com
//
// See --help for all available options.
package main

// main is the entry point for webrisk.
func main() {
	Execute()
}
