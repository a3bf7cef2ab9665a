package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stash/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("expected exists=false for missing file")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.ScratchDir) {
		t.Errorf("scratch dir not absolute: %q", cfg.Paths.ScratchDir)
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
scratch_dir = "` + dir + `/scratch"
state_dir = "` + dir + `/state"
default_library = "~/assets/main.stash"

[logging]
level = "DEBUG"
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging not normalized: %+v", cfg.Logging)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cfg.Paths.DefaultLibrary, home) {
		t.Errorf("default library not expanded: %q", cfg.Paths.DefaultLibrary)
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad format")
	}
}

func TestCreateSampleAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	// The sample is fully commented out, so it must load as pure defaults.
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Error("sample file should exist")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("sample config changed defaults: %+v", cfg.Logging)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ScratchDir = filepath.Join(dir, "scratch")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.StateDir = filepath.Join(dir, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.ScratchDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("directory %q not created", d)
		}
	}
}
