package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
telegram:
  token: "123:abc"
  admin_chat_id: -100200300
  webapp_url: "https://shop.example"
  poll_timeout: "15s"
logging:
  level: "debug"
  console: true
  file: { enabled: false, path: "" }
catalog:
  source_url: "https://sheets.example/catalog.json"
  refresh: "@every 5m"
web:
  enabled: true
  addr: ":9090"
storage:
  driver: "file"
  path: "./orders"
sessions:
  driver: "memory"
  ttl: "1h"
`)
	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.AdminChatID != -100200300 {
		t.Fatalf("admin_chat_id = %d", cfg.Telegram.AdminChatID)
	}
	if cfg.Telegram.WebAppURL != "https://shop.example" {
		t.Fatalf("webapp_url = %q", cfg.Telegram.WebAppURL)
	}
	if cfg.Catalog.Refresh != "@every 5m" {
		t.Fatalf("catalog.refresh = %q", cfg.Catalog.Refresh)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if got := m.Get(); got != cfg {
		t.Fatalf("Get() did not return committed config")
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "telegram": {"token": "123:abc", "webapp_url": "https://shop.example"},
  "logging": {"level": "info", "console": true, "file": {"enabled": false, "path": ""}},
  "catalog": {"source_url": "https://sheets.example/catalog.json"},
  "web": {"enabled": false}
}`)
	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.AdminChatID != 0 {
		t.Fatalf("expected zero admin chat id, got %d", cfg.Telegram.AdminChatID)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "config.yaml", `
telegram:
  token: "x"
  webapp_url: "https://shop.example"
  admin_chat: 5
logging: { level: "info", console: true, file: { enabled: false, path: "" } }
catalog: { source_url: "" }
web: { enabled: false }
`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadRejectsTrailingJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"telegram":{"token":"x","webapp_url":"u"},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"catalog":{"source_url":""},"web":{"enabled":false}}{"extra":1}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatalf("expected trailing data to be rejected")
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("x", " 10s "); err != nil || d.Seconds() != 10 {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-5s"); err == nil {
		t.Fatalf("negative duration accepted")
	}
	if _, err := ParseDurationField("x", "nope"); err == nil {
		t.Fatalf("bogus duration accepted")
	}
	if d, err := ParseDurationOrDefault("x", "", 7); err != nil || d != 7 {
		t.Fatalf("default not applied: %v, %v", d, err)
	}
}
