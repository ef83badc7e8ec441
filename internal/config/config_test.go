package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIBase, EnvBackendURL, EnvAPIToken, EnvTimeout, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config.toml: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected Dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.BackendEnabled() {
		t.Error("expected local mode without an API base")
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.DatabasePath() != filepath.Join(dir, StorageFile) {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `
api_base = " https://api.example.com/ "
api_token = "secret"
timeout = "2s"
storage_path = "data/tasks.db"
log_level = "debug"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBase != "https://api.example.com/" {
		t.Errorf("expected trimmed API base, got %q", cfg.APIBase)
	}
	if !cfg.BackendEnabled() {
		t.Error("expected remote mode")
	}
	if cfg.APIToken != "secret" {
		t.Errorf("expected token, got %q", cfg.APIToken)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Timeout)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "data", "tasks.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `api_base = "https://file.example.com"`)

	t.Setenv(EnvBackendURL, "https://alt.example.com")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBase != "https://alt.example.com" {
		t.Errorf("expected backend URL from env, got %q", cfg.APIBase)
	}

	t.Setenv(EnvAPIBase, "https://primary.example.com")
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBase != "https://primary.example.com" {
		t.Errorf("expected TODO_API_BASE to win, got %q", cfg.APIBase)
	}
}

func TestLoad_WhitespaceBaseIsLocal(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIBase, "   ")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BackendEnabled() {
		t.Error("whitespace-only base URL must not enable the backend")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeout, "soon")

	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for invalid timeout")
	}
	if !strings.Contains(err.Error(), EnvTimeout) {
		t.Errorf("expected error to name %s, got %v", EnvTimeout, err)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeConfig(t, dir, `api_base = `)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("unexpected config dir %q", got)
	}
}
