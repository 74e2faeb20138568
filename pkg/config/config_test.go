package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".docpilot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadReadsFileConfig(t *testing.T) {
	writeConfigFile(t, `
api_keys:
  anthropic: file-key
pipeline:
  adapter: anthropic
  max_review_cycles: 4
  pass_threshold: 80
`)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AnthropicAPIKey != "file-key" {
		t.Fatalf("anthropic key = %q, want file-key", cfg.AnthropicAPIKey)
	}
	if cfg.DefaultAdapter != "anthropic" {
		t.Fatalf("adapter = %q", cfg.DefaultAdapter)
	}
	if cfg.MaxReviewCycles != 4 {
		t.Fatalf("max review cycles = %d, want 4", cfg.MaxReviewCycles)
	}
	if cfg.PassThreshold != 80 {
		t.Fatalf("pass threshold = %d, want 80", cfg.PassThreshold)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	writeConfigFile(t, `
api_keys:
  openai: file-key
pipeline:
  max_review_cycles: 4
`)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("DOCPILOT_MAX_REVIEW_CYCLES", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIAPIKey != "env-key" {
		t.Fatalf("openai key = %q, want env-key", cfg.OpenAIAPIKey)
	}
	if cfg.MaxReviewCycles != 9 {
		t.Fatalf("max review cycles = %d, want 9", cfg.MaxReviewCycles)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("DOCPILOT_MAX_REVIEW_CYCLES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// The review budget deliberately has no default; callers must reject 0.
	if cfg.MaxReviewCycles != 0 {
		t.Fatalf("max review cycles = %d, want 0", cfg.MaxReviewCycles)
	}
	if cfg.RunsDir == "" {
		t.Fatal("runs dir should default under the config dir")
	}
}

func TestHasAdapter(t *testing.T) {
	cfg := &Config{AnthropicAPIKey: "k"}
	if !cfg.HasAdapter("anthropic") {
		t.Fatal("anthropic should be available")
	}
	if cfg.HasAdapter("openai") {
		t.Fatal("openai should not be available without a key")
	}
	if !cfg.HasAdapter("mock") {
		t.Fatal("mock needs no key")
	}
	if cfg.HasAdapter("deepseek") {
		t.Fatal("unknown adapters are never available")
	}
}
