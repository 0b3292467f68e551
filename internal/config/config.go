package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig holds view server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// APIConfig holds settings for the remote coaching API.
type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
	// EmpresaID is the tenant sent with multi-tenant requests; 0 omits it.
	EmpresaID int64           `koanf:"empresa_id"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// DatabaseConfig holds settings for the database backing the session store.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// SessionConfig holds token storage settings.
type SessionConfig struct {
	// EncryptionKey enables at-rest encryption of stored tokens when set.
	EncryptionKey string `koanf:"encryption_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// Default returns the configuration used for every key absent from the file
// and the environment.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8080,
			Mode:    gin.ReleaseMode,
			Timeout: "30s",
		},
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:5000",
			Timeout:   "15s",
			EmpresaID: 1,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "data/session.db"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file and overlays environment variables.
// An empty configPath skips the file so the process can run from defaults and
// environment alone. Environment variables use the prefix "APP__" and
// double-underscore as the hierarchy separator; single underscores are kept.
// For example, APP__API__BASE_URL=https://api.example.com overrides api.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// APP__SERVER__PORT -> server.port
	// APP__API__RATE_LIMIT__RPS -> api.rate_limit.rps
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}

	// Whitespace-only optional durations mean unset.
	durations := []struct {
		name  string
		value *string
	}{
		{"server.timeout", &c.Server.Timeout},
		{"server.cors.max_age", &c.Server.CORS.MaxAge},
		{"database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime},
		{"api.timeout", &c.API.Timeout},
	}
	for _, d := range durations {
		*d.value = strings.TrimSpace(*d.value)
		if *d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(*d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, *d.value, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("invalid %s %q: must be greater than 0", d.name, *d.value)
		}
	}

	limits := []struct {
		name string
		rl   RateLimitConfig
	}{
		{"server.rate_limit", c.Server.RateLimit},
		{"api.rate_limit", c.API.RateLimit},
	}
	for _, l := range limits {
		if !l.rl.Enabled {
			continue
		}
		if l.rl.RPS <= 0 {
			return fmt.Errorf("invalid %s.rps %v: must be positive when rate limiting is enabled", l.name, l.rl.RPS)
		}
		if l.rl.Burst <= 0 {
			return fmt.Errorf("invalid %s.burst %d: must be positive when rate limiting is enabled", l.name, l.rl.Burst)
		}
	}

	key := strings.TrimSpace(c.Session.EncryptionKey)
	if key != "" {
		if len(key) < 16 {
			return fmt.Errorf("invalid session.encryption_key: must be at least 16 characters")
		}
		if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(key) < 3 {
			return fmt.Errorf("session.encryption_key must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
		}
	}
	c.Session.EncryptionKey = key

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}

	return nil
}

func (c *Config) validateAPI() error {
	baseURL := strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if baseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	c.API.BaseURL = baseURL

	if c.API.EmpresaID < 0 {
		return fmt.Errorf("invalid api.empresa_id %d: must not be negative", c.API.EmpresaID)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
		return nil
	case "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	pg := &c.Database.Postgres
	pg.Host = strings.TrimSpace(pg.Host)
	pg.User = strings.TrimSpace(pg.User)
	pg.DBName = strings.TrimSpace(pg.DBName)
	pg.SSLMode = strings.TrimSpace(pg.SSLMode)

	if pg.Host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	if pg.User == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	if pg.DBName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}
	switch pg.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	return nil
}

// ParseDurationOr parses s, returning fallback when s is empty or invalid.
// Callers pass values already checked by Validate.
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, has := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if has {
			classes++
		}
	}
	return classes
}
