package fetch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	jsonPath := write("report.json", reportBody)
	yamlPath := write("report.YML", "risk_result:\n  risk: 42\ngeo_location: [DE]\n")
	badPath := write("report.txt", "{}")
	brokenPath := write("broken.json", "{")

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		r, err := LoadFile(jsonPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Server.IP != "203.0.113.7" {
			t.Errorf("ip = %q", r.Server.IP)
		}
	})

	t.Run("yaml with upper-case extension", func(t *testing.T) {
		t.Parallel()

		r, err := LoadFile(yamlPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.RiskResult.Risk.Valid || r.RiskResult.Risk.Value != 42 {
			t.Errorf("risk = %+v", r.RiskResult.Risk)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadFile(badPath); !errors.Is(err, ErrUnsupportedFile) {
			t.Errorf("expected ErrUnsupportedFile, got %v", err)
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadFile(brokenPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadFile(filepath.Join(dir, "absent.json")); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}
