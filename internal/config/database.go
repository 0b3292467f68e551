package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupDatabase opens the database that backs the session store and verifies
// it answers a ping within ctx. SQL statements are logged only when logger has
// debug enabled.
func SetupDatabase(ctx context.Context, cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	logMode := gormlogger.Warn
	if logger.Enabled(ctx, slog.LevelDebug) {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	pool := resolvePool(cfg.Driver, cfg.Pool)
	sqlDB.SetMaxIdleConns(pool.idle)
	sqlDB.SetMaxOpenConns(pool.open)
	sqlDB.SetConnMaxLifetime(pool.lifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.idle),
		slog.Int("max_open_conns", pool.open),
		slog.Duration("conn_max_lifetime", pool.lifetime),
	)

	return db, nil
}

func openDialector(cfg *DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		dir := filepath.Dir(cfg.SQLite.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(cfg.SQLite.Path), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(&cfg.Postgres)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

type poolSettings struct {
	idle     int
	open     int
	lifetime time.Duration
}

// resolvePool fills unset pool values. SQLite gets a single connection so
// session writes never contend for the file lock.
func resolvePool(driver string, p PoolConfig) poolSettings {
	s := poolSettings{idle: 2, open: 10, lifetime: time.Hour}
	if driver == "sqlite" {
		s = poolSettings{idle: 1, open: 1, lifetime: 0}
	}
	if p.MaxIdleConns > 0 {
		s.idle = p.MaxIdleConns
	}
	if p.MaxOpenConns > 0 {
		s.open = p.MaxOpenConns
	}
	if p.ConnMaxLifetime != "" {
		s.lifetime = ParseDurationOr(p.ConnMaxLifetime, s.lifetime)
	}
	if s.idle > s.open {
		s.idle = s.open
	}
	return s
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	if cfg == nil {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	query := url.Values{}
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}
