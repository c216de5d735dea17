package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/joey/internal/prompt"
)

var allKeys = []string{
	"JOEY_CONFIG", "JOEY_MODE", "JOEY_PORT", "LOG_LEVEL", "JOEY_MAX_SOURCE_CHARS",
	"JOEY_MAX_CONTEXT_CHARS", "JOEY_WINDOW_SIZE", "JOEY_SOFT_FAIL", "JOEY_MODEL",
	"JOEY_COMPLETION_URL", "JOEY_API_KEY", "JOEY_PERSONA", "JOEY_COMPLETION_TIMEOUT",
	"JOEY_FETCH_TIMEOUT", "JOEY_MAX_UPLOAD_BYTES", "JOEY_ALLOWED_ORIGINS",
	"JOEY_WATCH_DIR", "NATS_URL", "NATS_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_ContextDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModeContext || !cfg.ContextAware() {
		t.Errorf("expected context mode, got %s", cfg.Mode)
	}
	if cfg.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.MaxSourceChars != 3000 || cfg.MaxContextChars != 3000 {
		t.Errorf("expected 3000 char budgets, got %d/%d", cfg.MaxSourceChars, cfg.MaxContextChars)
	}
	if cfg.WindowSize != 5 {
		t.Errorf("expected window 5, got %d", cfg.WindowSize)
	}
	if !cfg.SoftFail {
		t.Error("expected soft fail in context mode")
	}
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("expected default model, got %s", cfg.Model)
	}
	if cfg.CompletionURL != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("unexpected completion url %s", cfg.CompletionURL)
	}
	if cfg.Persona != prompt.DefaultContextPersona {
		t.Errorf("unexpected persona %q", cfg.Persona)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.NatsURL != "" {
		t.Errorf("expected NATS disabled by default, got %s", cfg.NatsURL)
	}
}

func TestLoad_PlainDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOEY_MODE", "plain")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ContextAware() {
		t.Error("expected plain mode to be context-free")
	}
	if cfg.WindowSize != 0 {
		t.Errorf("expected unbounded window, got %d", cfg.WindowSize)
	}
	if cfg.SoftFail {
		t.Error("expected hard fail in plain mode")
	}
	if cfg.Model != "Joey" {
		t.Errorf("expected Joey model, got %s", cfg.Model)
	}
	if cfg.Persona != prompt.DefaultPlainPersona {
		t.Errorf("unexpected persona %q", cfg.Persona)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOEY_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOEY_MAX_SOURCE_CHARS", "500")
	t.Setenv("JOEY_MAX_CONTEXT_CHARS", "1500")
	t.Setenv("JOEY_WINDOW_SIZE", "8")
	t.Setenv("JOEY_SOFT_FAIL", "false")
	t.Setenv("JOEY_MODEL", "gpt-4o-mini")
	t.Setenv("JOEY_COMPLETION_URL", "http://localhost:9000/v1/chat/completions")
	t.Setenv("JOEY_API_KEY", "sk-test")
	t.Setenv("JOEY_COMPLETION_TIMEOUT", "30s")
	t.Setenv("JOEY_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("JOEY_WATCH_DIR", "/srv/docs")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("NATS_TOKEN", "s3cr3t")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.MaxSourceChars != 500 || cfg.MaxContextChars != 1500 {
		t.Errorf("unexpected budgets %d/%d", cfg.MaxSourceChars, cfg.MaxContextChars)
	}
	if cfg.WindowSize != 8 {
		t.Errorf("expected window 8, got %d", cfg.WindowSize)
	}
	if cfg.SoftFail {
		t.Error("expected soft fail disabled")
	}
	if cfg.Model != "gpt-4o-mini" || cfg.APIKey != "sk-test" {
		t.Errorf("unexpected model/key %s/%s", cfg.Model, cfg.APIKey)
	}
	if cfg.CompletionURL != "http://localhost:9000/v1/chat/completions" {
		t.Errorf("unexpected completion url %s", cfg.CompletionURL)
	}
	if cfg.CompletionTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.CompletionTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.WatchDir != "/srv/docs" {
		t.Errorf("unexpected watch dir %s", cfg.WatchDir)
	}
	if cfg.NatsURL != "nats://localhost:4222" || cfg.NatsToken != "s3cr3t" {
		t.Errorf("unexpected nats settings %s/%s", cfg.NatsURL, cfg.NatsToken)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOEY_PORT", "notanumber")
	t.Setenv("JOEY_SOFT_FAIL", "maybe")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8000 {
		t.Errorf("expected default port on invalid value, got %d", cfg.Port)
	}
	if !cfg.SoftFail {
		t.Error("expected default soft fail on invalid value")
	}
}

func TestLoad_UnknownMode(t *testing.T) {
	clearEnv(t)

	if _, err := Load(LoadOptions{Mode: "turbo"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestLoad_NonPositiveBudget(t *testing.T) {
	clearEnv(t)
	t.Setenv("JOEY_MAX_CONTEXT_CHARS", "0")

	if _, err := Load(LoadOptions{}); err == nil {
		t.Fatal("expected error for zero context budget")
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "joey.yaml")
	content := `mode: plain
port: 8100
window_size: 3
soft_fail: true
model: local-model
persona: "You are a test persona."
fetch_timeout: 5s
allowed_origins:
  - http://ui.test
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOEY_MODEL", "env-model")

	cfg, err := Load(LoadOptions{Path: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mode != ModePlain {
		t.Errorf("expected mode from file, got %s", cfg.Mode)
	}
	if cfg.Port != 8100 || cfg.WindowSize != 3 || !cfg.SoftFail {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Model != "env-model" {
		t.Errorf("expected env to override file, got %s", cfg.Model)
	}
	if cfg.Persona != "You are a test persona." {
		t.Errorf("unexpected persona %q", cfg.Persona)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("expected 5s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://ui.test" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}

func TestLoad_FileViaEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "joey.yaml")
	if err := os.WriteFile(path, []byte("max_source_chars: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOEY_CONFIG", path)

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxSourceChars != 42 {
		t.Errorf("expected 42, got %d", cfg.MaxSourceChars)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_BadFileDuration(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "joey.yaml")
	if err := os.WriteFile(path, []byte("fetch_timeout: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(LoadOptions{Path: path}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
