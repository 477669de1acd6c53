package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "localhost" {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Mail.Provider != "resend" {
		t.Errorf("mail provider default: %q", cfg.Mail.Provider)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("db defaults: %+v", cfg.Database)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  host: 0.0.0.0
  port: 9000
  allowed_origins: ["https://atrium.luminaed.org"]
mail:
  provider: ses
  from: outreach@luminaed.org
redis:
  enabled: true
  addr: redis:6379
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.AllowedOrigins[0] != "https://atrium.luminaed.org" {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Mail.Provider != "ses" || cfg.Mail.From != "outreach@luminaed.org" {
		t.Errorf("mail: %+v", cfg.Mail)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis: %+v", cfg.Redis)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/atrium")
	t.Setenv("RESEND_API_KEY", "re_test_123")
	t.Setenv("MAIL_FROM", "env@luminaed.org")

	cfg, err := LoadFromEnv(writeConfig(t, "mail:\n  from: file@luminaed.org\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.URL != "postgres://env-host/atrium" {
		t.Errorf("database url: %q", cfg.Database.URL)
	}
	if cfg.Mail.ResendAPIKey != "re_test_123" || cfg.Mail.From != "env@luminaed.org" {
		t.Errorf("mail: %+v", cfg.Mail)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
