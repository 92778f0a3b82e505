package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Fatalf("addr = %q, want %q", cfg.Server.Addr, DefaultHTTPAddr)
	}
	if cfg.Telegram.WebOrigin != DefaultWebOrigin {
		t.Fatalf("web origin = %q, want %q", cfg.Telegram.WebOrigin, DefaultWebOrigin)
	}
	if cfg.Cleanup.Schedule != DefaultCleanupSpec || cfg.Cleanup.Retention != DefaultCleanupRetention {
		t.Fatalf("cleanup = %+v", cfg.Cleanup)
	}
	if cfg.Postgres.DSN() != "postgres://postgres:@127.0.0.1:5432/returns?sslmode=disable" {
		t.Fatalf("dsn = %q", cfg.Postgres.DSN())
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9090"

[telegram]
web_origin = "https://example.test"

[cleanup]
retention = "24h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Telegram.WebOrigin != "https://example.test" {
		t.Fatalf("web origin = %q", cfg.Telegram.WebOrigin)
	}
	if cfg.Cleanup.Retention != "24h" {
		t.Fatalf("retention = %q", cfg.Cleanup.Retention)
	}
	// untouched sections keep their defaults
	if cfg.Postgres.Host != DefaultPGHost {
		t.Fatalf("pg host = %q", cfg.Postgres.Host)
	}
}

func TestLoadEnvOverridesSecret(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Fatalf("bot token = %q", cfg.Telegram.BotToken)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
}
