package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/webrisk/internal/pipeline"
	"github.com/nao1215/webrisk/internal/report"
	"github.com/nao1215/webrisk/internal/view"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"https://example.com/a?b", "https___example.com_a_b"},
		{"xn--bcher-kva.example", "xn--bcher-kva.example"},
		{"../etc/passwd", "etc_passwd"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := sanitizeFileName(tt.in); got != tt.want {
				t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputFileName(t *testing.T) {
	t.Parallel()

	used := make(map[string]int)
	withPanel := &pipeline.Job{URL: "https://www.example.com/x", Panel: &view.Panel{Host: "www.example.com"}}
	same := &pipeline.Job{URL: "https://www.example.com/y", Panel: &view.Panel{Host: "www.example.com"}}
	noPanel := &pipeline.Job{URL: "example.org"}
	empty := &pipeline.Job{}

	got := []string{
		outputFileName(withPanel, report.FormatHTML, used),
		outputFileName(same, report.FormatHTML, used),
		outputFileName(noPanel, report.FormatMarkdown, used),
		outputFileName(empty, report.FormatText, used),
	}
	want := []string{"www.example.com.html", "www.example.com-2.html", "example.org.md", "report.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWriteOutputs(t *testing.T) {
	t.Parallel()

	jobs := func() []*pipeline.Job {
		return []*pipeline.Job{
			{URL: "a.example", Output: []byte("A\n")},
			{URL: "b.example", Err: errors.New("broken")},
			{URL: "c.example", Output: []byte("C\n")},
		}
	}

	t.Run("stdout in order skipping failures", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := writeOutputs(&buf, "", report.FormatText, jobs()); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "A\nC\n" {
			t.Errorf("stdout = %q", buf.String())
		}
	})

	t.Run("directory for several jobs", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "out")
		var buf bytes.Buffer
		if err := writeOutputs(&buf, dir, report.FormatText, jobs()); err != nil {
			t.Fatal(err)
		}
		for name, want := range map[string]string{"a.example.txt": "A\n", "c.example.txt": "C\n"} {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				t.Errorf("expected %s: %v", name, err)
				continue
			}
			if string(data) != want {
				t.Errorf("%s = %q, want %q", name, data, want)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "b.example.txt")); !os.IsNotExist(err) {
			t.Error("failed job must not produce a file")
		}
		if strings.Count(buf.String(), "Report written to") != 2 {
			t.Errorf("unexpected progress output: %q", buf.String())
		}
	})

	t.Run("single job to file", func(t *testing.T) {
		t.Parallel()
		dest := filepath.Join(t.TempDir(), "nested", "panel.txt")
		var buf bytes.Buffer
		one := []*pipeline.Job{{URL: "a.example", Output: []byte("A\n")}}
		if err := writeOutputs(&buf, dest, report.FormatText, one); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "A\n" {
			t.Errorf("file = %q", data)
		}
		info, err := os.Stat(dest)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); runtime.GOOS != "windows" && perm&0o077 != 0 {
			t.Errorf("report file permissions = %o, want owner-only", perm)
		}
	})
}

func TestJobErrors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	jobs := []*pipeline.Job{
		{URL: "ok.example"},
		{Source: "bad.json", Err: sentinel},
	}
	err := jobErrors(jobs)
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel in %v", err)
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("expected job name in %q", err.Error())
	}
	if jobErrors(jobs[:1]) != nil {
		t.Error("expected nil without failures")
	}
}
