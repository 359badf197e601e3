// Package config loads the dashboard configuration from an optional TOML
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/krama-desa/iuran/internal/kramaapi"
)

// Config is the complete configuration of the iuran service.
type Config struct {
	API       APIConfig       `toml:"api"`
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Auth      AuthConfig      `toml:"auth"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig points at the village backend.
type APIConfig struct {
	BaseURL      string        `toml:"base_url"`
	MembersPath  string        `toml:"members_path"`
	PaymentsPath string        `toml:"payments_path"`
	Timeout      time.Duration `toml:"timeout"`

	// Payment defaults sent when staff do not override them.
	DefaultMethod     string `toml:"default_method"`
	DefaultNote       string `toml:"default_note"`
	DefaultRecordedBy int64  `toml:"default_recorded_by"`
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `toml:"listen_addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// AuthConfig configures staff sessions.
type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"`
	SessionTTL time.Duration `toml:"session_ttl"`
}

// DashboardConfig tunes the view.
type DashboardConfig struct {
	NotificationTTL time.Duration `toml:"notification_ttl"`
	ProposalTTL     time.Duration `toml:"proposal_ttl"`
	SweepInterval   time.Duration `toml:"sweep_interval"`
	CurrencySymbol  string        `toml:"currency_symbol"`
	Locale          string        `toml:"locale"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// DevJWTSecret is used when no secret is configured. It is only suitable
// for local development.
const DevJWTSecret = "dev-secret-key-change-in-production"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000/api",
			MembersPath:   kramaapi.DefaultMembersPath,
			PaymentsPath:  kramaapi.DefaultPaymentsPath,
			Timeout:       15 * time.Second,
			DefaultMethod: kramaapi.DefaultMethod,
			DefaultNote:   kramaapi.DefaultNote,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DBPath: "./data/iuran.db",
		},
		Auth: AuthConfig{
			JWTSecret:  DevJWTSecret,
			SessionTTL: 8 * time.Hour,
		},
		Dashboard: DashboardConfig{
			NotificationTTL: 5 * time.Second,
			ProposalTTL:     2 * time.Minute,
			SweepInterval:   time.Minute,
			CurrencySymbol:  "Rp",
			Locale:          "id",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path falls back to IURAN_CONFIG; with
// neither set only defaults and environment are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("IURAN_CONFIG")
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			slog.Warn("Ignoring unknown config keys", "path", path, "keys", strings.Join(keys, ","))
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.API.BaseURL, "IURAN_API_BASE_URL")
	setString(&c.API.MembersPath, "IURAN_API_MEMBERS_PATH")
	setString(&c.API.PaymentsPath, "IURAN_API_PAYMENTS_PATH")
	setString(&c.Server.ListenAddr, "IURAN_LISTEN_ADDR")
	setString(&c.Storage.DBPath, "IURAN_DB_PATH")
	setString(&c.Auth.JWTSecret, "IURAN_JWT_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("IURAN_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IURAN_SESSION_TTL: %w", err)
		}
		c.Auth.SessionTTL = d
	}
	if v := os.Getenv("IURAN_RECORDED_BY"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid IURAN_RECORDED_BY: %w", err)
		}
		c.API.DefaultRecordedBy = id
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	for name, p := range map[string]string{"api.members_path": c.API.MembersPath, "api.payments_path": c.API.PaymentsPath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with /, got %q", name, p)
		}
	}
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is required")
	}
	if c.Storage.DBPath == "" {
		return errors.New("storage.db_path is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	if c.Dashboard.NotificationTTL <= 0 {
		return errors.New("dashboard.notification_ttl must be positive")
	}
	if c.Dashboard.ProposalTTL <= 0 {
		return errors.New("dashboard.proposal_ttl must be positive")
	}
	if c.API.DefaultRecordedBy < 0 {
		return errors.New("api.default_recorded_by must not be negative")
	}
	return nil
}

// InsecureSecret reports whether the development JWT secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.Auth.JWTSecret == DevJWTSecret
}
