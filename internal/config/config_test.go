package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://localhost:8000/api")
	}
	if cfg.API.MembersPath != "/members" || cfg.API.PaymentsPath != "/payments" {
		t.Errorf("API paths = %q %q", cfg.API.MembersPath, cfg.API.PaymentsPath)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Dashboard.NotificationTTL != 5*time.Second {
		t.Errorf("Dashboard.NotificationTTL = %v, want 5s", cfg.Dashboard.NotificationTTL)
	}
	if cfg.Dashboard.ProposalTTL != 2*time.Minute {
		t.Errorf("Dashboard.ProposalTTL = %v, want 2m", cfg.Dashboard.ProposalTTL)
	}
	if cfg.Auth.SessionTTL != 8*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 8h", cfg.Auth.SessionTTL)
	}
	if cfg.Dashboard.CurrencySymbol != "Rp" || cfg.Dashboard.Locale != "id" {
		t.Errorf("currency = %q %q", cfg.Dashboard.CurrencySymbol, cfg.Dashboard.Locale)
	}
	if cfg.API.DefaultMethod != "Transfer Bank" || cfg.API.DefaultNote != "pending" {
		t.Errorf("payment defaults = %q %q", cfg.API.DefaultMethod, cfg.API.DefaultNote)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if !cfg.InsecureSecret() {
		t.Error("defaults should use the development secret")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("IURAN_CONFIG", "")
	t.Setenv("IURAN_API_BASE_URL", "")
	t.Setenv("IURAN_LISTEN_ADDR", "")

	path := filepath.Join(t.TempDir(), "iuran.toml")
	content := `
[api]
base_url = "https://desa.example/api"
members_path = "/kramas"
payments_path = "/pembayarans"
default_recorded_by = 3

[server]
listen_addr = ":9090"

[dashboard]
notification_ttl = "3s"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://desa.example/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.MembersPath != "/kramas" || cfg.API.PaymentsPath != "/pembayarans" {
		t.Errorf("legacy paths not applied: %q %q", cfg.API.MembersPath, cfg.API.PaymentsPath)
	}
	if cfg.API.DefaultRecordedBy != 3 {
		t.Errorf("API.DefaultRecordedBy = %d, want 3", cfg.API.DefaultRecordedBy)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Errorf("Server.ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Dashboard.NotificationTTL != 3*time.Second {
		t.Errorf("Dashboard.NotificationTTL = %v, want 3s", cfg.Dashboard.NotificationTTL)
	}
	// Untouched sections keep their defaults.
	if cfg.Dashboard.ProposalTTL != 2*time.Minute {
		t.Errorf("Dashboard.ProposalTTL = %v, want 2m", cfg.Dashboard.ProposalTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IURAN_CONFIG", "")
	t.Setenv("IURAN_API_BASE_URL", "http://backend:8000/api")
	t.Setenv("IURAN_LISTEN_ADDR", "127.0.0.1:8081")
	t.Setenv("IURAN_DB_PATH", "/tmp/iuran-test.db")
	t.Setenv("IURAN_JWT_SECRET", "production-secret")
	t.Setenv("IURAN_SESSION_TTL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://backend:8000/api" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8081" {
		t.Errorf("Server.ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Storage.DBPath != "/tmp/iuran-test.db" {
		t.Errorf("Storage.DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.Auth.SessionTTL != 30*time.Minute {
		t.Errorf("Auth.SessionTTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.InsecureSecret() {
		t.Error("secret override not applied")
	}

	t.Setenv("IURAN_SESSION_TTL", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid IURAN_SESSION_TTL")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.API.BaseURL = "ftp://desa" }},
		{"no host", func(c *Config) { c.API.BaseURL = "http://" }},
		{"relative path", func(c *Config) { c.API.MembersPath = "members" }},
		{"no listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"no db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"no secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"zero notification ttl", func(c *Config) { c.Dashboard.NotificationTTL = 0 }},
		{"zero proposal ttl", func(c *Config) { c.Dashboard.ProposalTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
