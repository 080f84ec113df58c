package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BaseURL != "" || !cfg.CacheEnabled() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	off := false
	cfg := &Config{
		Model:    "gpt-4o-mini",
		UseCache: &off,
		CacheDir: "/tmp/perchance-cache",
		Timeout:  "45s",
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("config mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Model != "gpt-4o-mini" || got.CacheEnabled() {
		t.Fatalf("unexpected config: %+v", got)
	}
	dir, err := got.ResolvedCacheDir()
	if err != nil || dir != "/tmp/perchance-cache" {
		t.Fatalf("ResolvedCacheDir() = %q, %v", dir, err)
	}
	d, err := got.TimeoutDuration()
	if err != nil || d != 45*time.Second {
		t.Fatalf("TimeoutDuration() = %v, %v", d, err)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: soon\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultPathsEndWithAppName(t *testing.T) {
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error = %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != AppName {
		t.Fatalf("DefaultConfigPath() = %q", path)
	}
	var nilCfg *Config
	dir, err := nilCfg.ResolvedCacheDir()
	if err != nil || filepath.Base(dir) != AppName {
		t.Fatalf("ResolvedCacheDir() = %q, %v", dir, err)
	}
}
