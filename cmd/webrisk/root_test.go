package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/nao1215/webrisk/internal/config"
	"github.com/spf13/cobra"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "webrisk" {
			t.Errorf("expected use 'webrisk', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has global flags", func(t *testing.T) {
		t.Parallel()
		verbose := cmd.PersistentFlags().Lookup("verbose")
		if verbose == nil || verbose.Shorthand != "v" || verbose.DefValue != "false" {
			t.Errorf("unexpected verbose flag: %+v", verbose)
		}
		cfg := cmd.PersistentFlags().Lookup("config")
		if cfg == nil || cfg.Shorthand != "c" {
			t.Errorf("unexpected config flag: %+v", cfg)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"render": false, "fetch": false, "history": false,
			"serve": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("standalone command without flag", func(t *testing.T) {
		t.Parallel()
		if getVerboseFlag(&cobra.Command{Use: "x"}) {
			t.Error("expected false when flag is not defined")
		}
	})

	t.Run("inherited from root", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatal(err)
		}
		render, _, err := root.Find([]string{"render"})
		if err != nil {
			t.Fatal(err)
		}
		if !getVerboseFlag(render) {
			t.Error("expected verbose inherited from root")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies config file", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTestConfig(t, dir, "output:\n  format: markdown\napi:\n  endpoint: https://api.example.com/v1\n  key: k-123\n")

		root := NewRootCmd()
		if err := root.PersistentFlags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(root)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Format != "markdown" {
			t.Errorf("Format = %q, want markdown", cfg.Format)
		}
		if cfg.APIEndpoint != "https://api.example.com/v1" || cfg.APIKey != "k-123" {
			t.Errorf("api settings not applied: %q %q", cfg.APIEndpoint, cfg.APIKey)
		}
		if cfg.DBDir != historyDir(dir) {
			t.Errorf("DBDir = %q, want %q", cfg.DBDir, historyDir(dir))
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("ConfigFilePath = %q, want %q", cfg.ConfigFilePath, path)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		root := NewRootCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := root.PersistentFlags().Set("config", missing); err != nil {
			t.Fatal(err)
		}
		_, err := loadConfig(root)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeTestFile(t, dir, "bad.yaml", "output: [unterminated\n")
		root := NewRootCmd()
		if err := root.PersistentFlags().Set("config", path); err != nil {
			t.Fatal(err)
		}
		if _, err := loadConfig(root); err == nil {
			t.Error("expected parse error")
		}
	})
}
