package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// sampleReport is a moderately safe report with one failed check and one
// blacklist detection.
const sampleReport = `{
  "categories": {"is_torrent": true, "is_vpn_provider": false, "is_pastebin": true},
  "security_checks": {"is_malware": false, "is_phishing": true, "is_ssl_valid": true},
  "risk_result": {"risk": 12},
  "redirect": {"found": false},
  "server_details": {"ip": "93.184.216.34", "country_name": "United States", "isp": "Edgecast", "asn": 15133},
  "geo_location": ["us"],
  "blacklists": {
    "detections": 1,
    "engines": [{"name": "SURBL", "detected": false}, {"name": "Spamhaus", "detected": true}]
  }
}`

// riskyReport differs from sampleReport in score, categories and engines.
const riskyReport = `{
  "categories": {"is_torrent": true, "is_url_shortener": true},
  "security_checks": {"is_malware": true, "is_phishing": true, "is_ssl_valid": true},
  "risk_result": {"risk": 80},
  "blacklists": {
    "detections": 2,
    "engines": [{"name": "SURBL", "detected": true}, {"name": "Spamhaus", "detected": true}]
  }
}`

// writeTestFile writes content to dir/name and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeTestConfig writes a .webrisk that keeps history under dir.
// extra is appended verbatim.
func writeTestConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	body := "history:\n  dir: \"" + filepath.ToSlash(filepath.Join(dir, "data")) + "\"\n" + extra
	return writeTestFile(t, dir, ".webrisk", body)
}

// historyDir returns the history directory used by writeTestConfig.
func historyDir(dir string) string {
	return filepath.Join(dir, "data")
}

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// assertContains fails the test for every want missing from got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}
