package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testYAML = `server:
  host: "0.0.0.0"
  port: 3000
  mode: "release"
  timeout: "10s"
  rate_limit:
    enabled: true
    rps: 20
    burst: 40
api:
  base_url: "https://api.example.com/"
  timeout: "5s"
  empresa_id: 7
database:
  driver: "postgres"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "admin"
    password: "secret"
    dbname: "coachsync"
    sslmode: "require"
  pool:
    max_open_conns: 50
session:
  encryption_key: "Sup3r-Secret-Session-Key"
log:
  level: "INFO"
  format: "json"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_FullYAML(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 3000 || cfg.Server.Timeout != "10s" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RPS != 20 || cfg.Server.RateLimit.Burst != 40 {
		t.Errorf("Server.RateLimit = %+v", cfg.Server.RateLimit)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("API.BaseURL = %q, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.EmpresaID != 7 || cfg.API.Timeout != "5s" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Postgres.Port != 5433 || cfg.Database.Pool.MaxOpenConns != 50 {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Session.EncryptionKey != "Sup3r-Secret-Session-Key" {
		t.Errorf("Session.EncryptionKey = %q", cfg.Session.EncryptionKey)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want normalized level", cfg.Log)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	want := Default()
	if cfg.Server.Port != want.Server.Port || cfg.Server.Mode != "release" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:5000" || cfg.API.EmpresaID != 1 {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.SQLite.Path != "data/session.db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, "api:\n  empresa_id: 3\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.EmpresaID != 3 {
		t.Errorf("EmpresaID = %d, want 3", cfg.API.EmpresaID)
	}
	if cfg.API.Timeout != "15s" || cfg.Server.Port != 8080 {
		t.Errorf("defaults lost: api.timeout=%q server.port=%d", cfg.API.Timeout, cfg.Server.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__API__BASE_URL", "https://staging.example.com")
	t.Setenv("APP__API__EMPRESA_ID", "0")
	t.Setenv("APP__DATABASE__DRIVER", "sqlite")
	t.Setenv("APP__DATABASE__POOL__CONN_MAX_LIFETIME", "2h")
	t.Setenv("APP__LOG__LEVEL", "error")

	cfg, err := Load(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "https://staging.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.EmpresaID != 0 {
		t.Errorf("API.EmpresaID = %d, want 0", cfg.API.EmpresaID)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.Pool.ConnMaxLifetime != "2h" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"blank host", func(c *Config) { c.Server.Host = "  " }, "server.host"},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "invalid api.base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, "invalid api.base_url"},
		{"negative tenant", func(c *Config) { c.API.EmpresaID = -1 }, "api.empresa_id"},
		{"bad api timeout", func(c *Config) { c.API.Timeout = "fast" }, "api.timeout"},
		{"negative server timeout", func(c *Config) { c.Server.Timeout = "-1s" }, "server.timeout"},
		{"blank duration is unset", func(c *Config) { c.Server.CORS.MaxAge = "  " }, ""},
		{"rate limit without rps", func(c *Config) {
			c.API.RateLimit = RateLimitConfig{Enabled: true, Burst: 1}
		}, "api.rate_limit.rps"},
		{"rate limit without burst", func(c *Config) {
			c.Server.RateLimit = RateLimitConfig{Enabled: true, RPS: 1}
		}, "server.rate_limit.burst"},
		{"disabled rate limit ignores values", func(c *Config) {
			c.Server.RateLimit = RateLimitConfig{RPS: -1}
		}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite without path", func(c *Config) { c.Database.SQLite.Path = "" }, "database.sqlite.path"},
		{"postgres without host", func(c *Config) { c.Database.Driver = "postgres" }, "database.postgres.host"},
		{"postgres bad sslmode", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.Postgres = PostgresConfig{Host: "h", Port: 5432, User: "u", DBName: "d", SSLMode: "on"}
		}, "sslmode"},
		{"short encryption key", func(c *Config) { c.Session.EncryptionKey = "short" }, "at least 16"},
		{"weak key in release", func(c *Config) { c.Session.EncryptionKey = "aaaaaaaaaaaaaaaaaaaa" }, "3 character classes"},
		{"weak key in debug", func(c *Config) {
			c.Server.Mode = "debug"
			c.Session.EncryptionKey = "aaaaaaaaaaaaaaaaaaaa"
		}, ""},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseDurationOr(t *testing.T) {
	if got := ParseDurationOr("", 3); got != 3 {
		t.Errorf("empty = %v", got)
	}
	if got := ParseDurationOr("nope", 3); got != 3 {
		t.Errorf("invalid = %v", got)
	}
	if got := ParseDurationOr("2s", 3); got.Seconds() != 2 {
		t.Errorf("2s = %v", got)
	}
}

func TestCountSecretClasses(t *testing.T) {
	tests := []struct {
		secret string
		want   int
	}{
		{"", 0},
		{"abc", 1},
		{"abcDEF", 2},
		{"abcDEF123", 3},
		{"abcDEF123!", 4},
	}
	for _, tt := range tests {
		if got := CountSecretClasses(tt.secret); got != tt.want {
			t.Errorf("CountSecretClasses(%q) = %d, want %d", tt.secret, got, tt.want)
		}
	}
}
