package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected default host, got %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18520 {
		t.Errorf("expected default port, got %d", cfg.Gateway.Port)
	}
	if cfg.Chat.MaxHistory != 10 {
		t.Errorf("expected max_history 10, got %d", cfg.Chat.MaxHistory)
	}
	if cfg.Chat.TieBreak != "store-order" {
		t.Errorf("expected tie_break store-order, got %q", cfg.Chat.TieBreak)
	}
	if cfg.Chat.BulkLimit != 1000 {
		t.Errorf("expected bulk_limit 1000, got %d", cfg.Chat.BulkLimit)
	}
	if cfg.Reminder.Horizon.Duration() != 24*time.Hour {
		t.Errorf("expected 24h horizon, got %v", cfg.Reminder.Horizon.Duration())
	}
}

func TestLoad_JSONCComments(t *testing.T) {
	path := writeConfig(t, `{
		// gateway settings
		"gateway": {
			"port": 9000, // custom port
		},
		"chat": {
			"max_history": 5,
			"tie_break": "last-mentioned",
		},
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gateway.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Gateway.Port)
	}
	if cfg.Chat.MaxHistory != 5 {
		t.Errorf("expected max_history 5, got %d", cfg.Chat.MaxHistory)
	}
	if cfg.Chat.TieBreak != "last-mentioned" {
		t.Errorf("expected tie_break last-mentioned, got %q", cfg.Chat.TieBreak)
	}
}

func TestLoad_EnvRefs(t *testing.T) {
	t.Setenv("TASKCHAT_TEST_KEY", "sk-test-123")

	path := writeConfig(t, `{
		"models": {
			"default": "main",
			"providers": {
				"main": {
					"driver": "gemini",
					"model": "gemini-1.5-flash",
					"auth": { "api_key": "${TASKCHAT_TEST_KEY}" }
				}
			}
		}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prov, ok := cfg.Models.Providers["main"]
	if !ok {
		t.Fatal("expected provider 'main'")
	}
	if prov.Auth.APIKey != "sk-test-123" {
		t.Errorf("expected expanded api key, got %q", prov.Auth.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.jsonc"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `{"reminder": {"horizon": "soonish"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Chat.ListLimit != 20 {
		t.Errorf("expected list_limit 20, got %d", cfg.Chat.ListLimit)
	}
	if cfg.Reminder.Schedule == "" {
		t.Error("expected default reminder schedule")
	}
}
