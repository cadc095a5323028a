// Package store opens the relational store behind the HR tools.
//
// Production deployments use MySQL. SQLite is supported for development and
// tests and ships with a bundled schema and seed data.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config describes how to reach the store.
type Config struct {
	Driver string

	// MySQL
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SQLite
	Path string

	// ConnectTimeout bounds dialing a new connection.
	ConnectTimeout time.Duration

	// MaxOpen caps connections held by database/sql. It should be at least
	// the pool size.
	MaxOpen int
}

// Open opens the store and verifies it answers a ping.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	logger := slog.Default().With("component", "store")

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case DriverMySQL:
		db, err = openMySQL(cfg)
	case DriverSQLite:
		db, err = openSQLite(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.MaxOpen)
		db.SetMaxIdleConns(cfg.MaxOpen)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s store: %w", cfg.Driver, err)
	}

	logger.Info("store opened", "driver", cfg.Driver, "target", cfg.target())
	return db, nil
}

func openMySQL(cfg Config) (*sql.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.Timeout = cfg.ConnectTimeout
	// Dates are scanned as text so MySQL and SQLite rows look the same.
	mc.ParseTime = false

	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("configuring mysql: %w", err)
	}
	return sql.OpenDB(connector), nil
}

func openSQLite(cfg Config) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// sqlitePragmas run on every new connection, not just the first.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

func sqliteDSN(path string) string {
	return "file:" + path + "?" + sqlitePragmas
}

// target describes the store without credentials.
func (c Config) target() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return fmt.Sprintf("%s@%s/%s", c.User, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Name)
}
