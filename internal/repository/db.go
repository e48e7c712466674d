package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DBConfig selects and parameterizes the storage backend. Local chooses a
// SQLite file; otherwise a MySQL server is used.
type DBConfig struct {
	Local      bool
	SQLitePath string

	Host     string
	Port     string
	User     string
	Password string
	Name     string

	ConnectAttempts int
	ConnectDelay    time.Duration
}

// Driver returns the database/sql driver name for the configured backend.
func (c DBConfig) Driver() string {
	if c.Local {
		return DriverSQLite
	}
	return DriverMySQL
}

// DSN builds the driver-specific data source name.
func (c DBConfig) DSN() string {
	if c.Local {
		return "file:" + c.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

// String describes the target without credentials, for logging.
func (c DBConfig) String() string {
	if c.Local {
		return "sqlite:" + c.SQLitePath
	}
	return fmt.Sprintf("mysql://%s/%s", net.JoinHostPort(c.Host, c.Port), c.Name)
}

// NewDB opens a connection pool for cfg and waits until the server answers,
// retrying up to cfg.ConnectAttempts times with a fixed delay.
func NewDB(ctx context.Context, cfg DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver(), cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.Local {
		// SQLite allows a single writer; serialize through one connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := waitForDB(ctx, db, cfg.ConnectAttempts, cfg.ConnectDelay, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg, err)
	}

	return db, nil
}

// minConnectDelay replaces a non-positive delay; the constant backoff
// requires a positive interval.
const minConnectDelay = time.Millisecond

// waitForDB pings db until it succeeds or attempts are exhausted.
func waitForDB(ctx context.Context, db *sql.DB, attempts int, delay time.Duration, logger *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	if delay <= 0 {
		delay = minConnectDelay
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			if attempt < attempts {
				logger.Warn("database ping failed, retrying", "attempt", attempt, "of", attempts, "delay", delay, "error", err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}
