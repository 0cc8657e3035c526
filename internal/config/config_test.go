// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "sparkdesk.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "123456:test-token"
  apply_form_url: "https://teamspark.dev/apply"

auth:
  operator_secret: "team-secret"

threads:
  ttl: "48h"
  max_entries: 1024

form:
  prompts:
    idea: "What would you like to build with us?"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123456:test-token" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "123456:test-token")
	}
	if cfg.Telegram.ApplyFormURL != "https://teamspark.dev/apply" {
		t.Errorf("Telegram.ApplyFormURL = %q, want %q", cfg.Telegram.ApplyFormURL, "https://teamspark.dev/apply")
	}
	if cfg.Auth.OperatorSecret != "team-secret" {
		t.Errorf("Auth.OperatorSecret = %q, want %q", cfg.Auth.OperatorSecret, "team-secret")
	}

	// Duration parsing
	if cfg.Threads.TTL != 48*time.Hour {
		t.Errorf("Threads.TTL = %v, want %v", cfg.Threads.TTL, 48*time.Hour)
	}
	if cfg.Threads.MaxEntries != 1024 {
		t.Errorf("Threads.MaxEntries = %d, want 1024", cfg.Threads.MaxEntries)
	}

	// Prompt overrides
	if got := cfg.Form.Prompts["idea"]; got != "What would you like to build with us?" {
		t.Errorf("Form.Prompts[idea] = %q", got)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "123456:test-token"
auth:
  operator_secret: "team-secret"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.ApplyFormURL != DefaultApplyFormURL {
		t.Errorf("ApplyFormURL default = %q, want %q", cfg.Telegram.ApplyFormURL, DefaultApplyFormURL)
	}
	if cfg.Threads.TTL != DefaultThreadTTL {
		t.Errorf("Threads.TTL default = %v, want %v", cfg.Threads.TTL, DefaultThreadTTL)
	}
	if cfg.Threads.MaxEntries != DefaultThreadMaxEntries {
		t.Errorf("Threads.MaxEntries default = %d, want %d", cfg.Threads.MaxEntries, DefaultThreadMaxEntries)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "123456:from-env")
	t.Setenv("TEST_OPERATOR_SECRET", "secret-from-env")

	configPath := writeConfig(t, `
telegram:
  token: "${TEST_BOT_TOKEN}"
auth:
  operator_secret: "${TEST_OPERATOR_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123456:from-env" {
		t.Errorf("Telegram.Token = %q, want expansion from env", cfg.Telegram.Token)
	}
	if cfg.Auth.OperatorSecret != "secret-from-env" {
		t.Errorf("Auth.OperatorSecret = %q, want expansion from env", cfg.Auth.OperatorSecret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("error = %v, want reading config file", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "telegram: [not: valid")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %v, want parsing config file", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "123456:test-token"
auth:
  operator_secret: "team-secret"
threads:
  ttl: "three days"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "threads.ttl") {
		t.Errorf("error = %v, want threads.ttl", err)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	configPath := writeConfig(t, `
auth:
  operator_secret: "team-secret"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing token")
	}
	if !strings.Contains(err.Error(), "telegram.token") {
		t.Errorf("error = %v, want telegram.token", err)
	}
}

func TestLoad_MissingOperatorSecret(t *testing.T) {
	configPath := writeConfig(t, `
telegram:
  token: "123456:test-token"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing operator secret")
	}
	if !strings.Contains(err.Error(), "auth.operator_secret") {
		t.Errorf("error = %v, want auth.operator_secret", err)
	}
}

func TestLoad_UnsetEnvVarFailsValidation(t *testing.T) {
	// ${UNSET} expands to empty, so the required token is missing
	configPath := writeConfig(t, `
telegram:
  token: "${SPARKDESK_TEST_UNSET_VAR}"
auth:
  operator_secret: "team-secret"
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() expected validation error for empty expanded token")
	}
}
