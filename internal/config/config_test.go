package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("FROM_EMAIL", "digest@example.com")
	t.Setenv("STORAGE_TYPE", " BBolt ")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FromEmail != "digest@example.com" {
		t.Errorf("unexpected from email %q", cfg.FromEmail)
	}
	if cfg.StorageType != "bbolt" {
		t.Errorf("expected normalized storage type, got %q", cfg.StorageType)
	}
	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("expected anthropic key from env")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.AppName != "upgraded-notifs" || cfg.Env != "development" {
		t.Errorf("unexpected app metadata %q/%q", cfg.AppName, cfg.Env)
	}
	if cfg.SeenPath != "./data/seen.json" {
		t.Errorf("unexpected seen path %q", cfg.SeenPath)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero http timeout")
	}
}

func TestLoadDigestJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"roles": ["AI", " Full stack ", "AI", ""], "recipient_email": " me@example.com "}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	d, err := LoadDigest(path)
	if err != nil {
		t.Fatalf("LoadDigest: %v", err)
	}
	if len(d.Roles) != 2 || d.Roles[0] != "AI" || d.Roles[1] != "Full stack" {
		t.Fatalf("unexpected roles %#v", d.Roles)
	}
	if d.RecipientEmail != "me@example.com" {
		t.Fatalf("unexpected recipient %q", d.RecipientEmail)
	}
}

func TestLoadDigestYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "roles:\n  - Data\nrecipient_email: me@example.com\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	d, err := LoadDigest(path)
	if err != nil {
		t.Fatalf("LoadDigest: %v", err)
	}
	if len(d.Roles) != 1 || d.Roles[0] != "Data" {
		t.Fatalf("unexpected roles %#v", d.Roles)
	}
}

func TestLoadDigestRequiresRecipient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"roles": ["AI"]}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadDigest(path); err == nil {
		t.Fatalf("expected error for missing recipient_email")
	}
}
