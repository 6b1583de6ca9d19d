// Package database provides connection setup for MariaDB and Redis.
// Both connections are created once at startup and shared with the plugins
// through the app package. This package owns the connection lifecycle
// (open, configure pool, ping, close) and the health check behind /healthz.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/vishwatech/studyplan/internal/config"
)

// mysqlDuplicateEntry is the MariaDB/MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// NewMariaDB opens the MariaDB pool and waits for the server to answer a ping.
// The wait uses exponential backoff because the database container may still
// be starting when the API container launches. Cancelling ctx aborts the wait.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	const maxRetries = 10
	backoff := 1 * time.Second
	var pingErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()

		if pingErr == nil {
			return db, nil
		}
		if attempt == maxRetries {
			break
		}

		slog.Warn("mariadb not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxRetries),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)

		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("waiting for mariadb: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("pinging mariadb after %d attempts: %w", maxRetries, pingErr)
}

// IsDuplicateKey reports whether err is a unique key violation. Repositories
// use it to turn a lost insert race into a conflict instead of a 500.
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}

// Ping checks both stores with the caller's deadline. Used by /healthz.
func Ping(ctx context.Context, db *sql.DB, rdb *redis.Client) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("mariadb: %w", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
