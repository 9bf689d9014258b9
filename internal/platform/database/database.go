// Package database opens the *sql.DB pool backing the record store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"airdrop/internal/platform/config"
)

// Dialect identifies the SQL flavour behind a pool.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Open creates a pool for cfg and verifies it with a ping. The pool size is
// fixed for the lifetime of the process.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, Dialect, error) {
	var (
		driver  string
		dsn     string
		dialect Dialect
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		driver, dsn, dialect = "postgres", cfg.URL, Postgres
	case config.DriverSQLite:
		driver, dsn, dialect = "sqlite", SQLiteDSN(cfg.URL), SQLite
	default:
		return nil, "", fmt.Errorf("open database: unsupported driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	size := cfg.PoolSize
	if size < 1 {
		size = config.DefaultPoolSize(cfg.Driver)
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	return db, dialect, nil
}

// SQLiteDSN normalises a sqlite URL. A "sqlite://" prefix is stripped and
// timestamps are stored in a format the driver can scan back into time.Time.
func SQLiteDSN(url string) string {
	dsn := strings.TrimPrefix(url, "sqlite://")
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}
