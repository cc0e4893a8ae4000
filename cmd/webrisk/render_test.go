package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/webrisk/internal/config"
	"github.com/nao1215/webrisk/internal/database"
)

func TestNewRenderCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRenderCmd()
	for _, name := range []string{"format", "output", "full-page", "batch", "url", "save"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag", name)
		}
	}
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected an error without report files")
	}
}

func TestRunRenderCmd(t *testing.T) {
	t.Parallel()

	t.Run("text to stdout", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)

		out, err := runCLI(t, "render", "-c", cfg, file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, out,
			"WEBSITE REPORT",
			"example.com",
			"Moderately Safe",
			"Torrenting",
			"Pastebin",
			"[FAIL] Phishing",
			"Spamhaus",
		)
	})

	t.Run("url flag overrides file name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "report.json", sampleReport)

		out, err := runCLI(t, "render", "-c", cfg, "--format", "json", "--url", "https://www.example.org/x", file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, out, `"host": "www.example.org"`, `"domain": "example.org"`)
	})

	t.Run("format from config file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "output:\n  format: markdown\n")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)

		out, err := runCLI(t, "render", "-c", cfg, file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, out, "# Website Report: example.com")
	})

	t.Run("full page html to file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)
		dest := filepath.Join(dir, "out", "panel.html")

		out, err := runCLI(t, "render", "-c", cfg, "-f", "html", "--full-page", "-o", dest, file)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertContains(t, out, "Report written to "+dest)

		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("expected output file: %v", err)
		}
		assertContains(t, string(data), "<!DOCTYPE html>", "webrisk-panel", "webrisk-panel--moderately-safe")
	})

	t.Run("several files into a directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		a := writeTestFile(t, dir, "example.com.json", sampleReport)
		b := writeTestFile(t, dir, "example.org.json", riskyReport)
		dest := filepath.Join(dir, "reports")

		if _, err := runCLI(t, "render", "-c", cfg, "-f", "md", "-b", "2", "-o", dest, a, b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, name := range []string{"example.com.md", "example.org.md"} {
			if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
	})

	t.Run("outputs keep input order on stdout", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		a := writeTestFile(t, dir, "first.example.json", sampleReport)
		b := writeTestFile(t, dir, "second.example.json", riskyReport)

		out, err := runCLI(t, "render", "-c", cfg, "-b", "2", a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := strings.Index(out, "first.example")
		second := strings.Index(out, "second.example")
		if first < 0 || second < 0 || first > second {
			t.Errorf("expected first.example before second.example, got:\n%s", out)
		}
	})

	t.Run("url with several files is rejected", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		a := writeTestFile(t, dir, "a.json", sampleReport)
		b := writeTestFile(t, dir, "b.json", sampleReport)

		_, err := runCLI(t, "render", "-c", cfg, "--url", "https://example.com", a, b)
		if err == nil || !strings.Contains(err.Error(), "--url") {
			t.Errorf("expected --url error, got %v", err)
		}
	})

	t.Run("pdf needs an output file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)

		_, err := runCLI(t, "render", "-c", cfg, "-f", "pdf", file)
		if !errors.Is(err, config.ErrPDFToStdout) {
			t.Errorf("expected ErrPDFToStdout, got %v", err)
		}
	})

	t.Run("pdf to file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)
		dest := filepath.Join(dir, "panel.pdf")

		if _, err := runCLI(t, "render", "-c", cfg, "-f", "pdf", "-o", dest, file); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("expected a PDF file, got prefix %q", data[:min(len(data), 8)])
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)

		_, err := runCLI(t, "render", "-c", cfg, "-f", "docx", file)
		if !errors.Is(err, config.ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("missing file reports its name and keeps others", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		good := writeTestFile(t, dir, "example.com.json", sampleReport)
		missing := filepath.Join(dir, "missing.json")

		out, err := runCLI(t, "render", "-c", cfg, good, missing)
		if err == nil || !strings.Contains(err.Error(), "missing.json") {
			t.Errorf("expected error naming missing.json, got %v", err)
		}
		assertContains(t, out, "WEBSITE REPORT")
	})

	t.Run("save stores the report once", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		cfg := writeTestConfig(t, dir, "")
		file := writeTestFile(t, dir, "example.com.json", sampleReport)

		for range 2 {
			if _, err := runCLI(t, "render", "-c", cfg, "--save", file); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		db, err := database.Open(historyDir(dir), database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		metas, err := db.History(context.Background(), "example.com", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(metas) != 1 {
			t.Errorf("expected 1 stored report, got %d", len(metas))
		}
	})
}
