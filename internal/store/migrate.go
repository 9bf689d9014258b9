package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"airdrop/internal/platform/database"
)

//go:embed migrations
var migrations embed.FS

var gooseDialects = map[database.Dialect]goose.Dialect{
	database.Postgres: goose.DialectPostgres,
	database.SQLite:   goose.DialectSQLite3,
}

// Migrate applies pending versioned migrations for dialect. Applied versions
// are tracked in goose_db_version, so repeated runs are no-ops.
func Migrate(ctx context.Context, db *sql.DB, dialect database.Dialect) error {
	provider, err := newMigrationProvider(db, dialect)
	if err != nil {
		return err
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the highest applied migration version.
func SchemaVersion(ctx context.Context, db *sql.DB, dialect database.Dialect) (int64, error) {
	provider, err := newMigrationProvider(db, dialect)
	if err != nil {
		return 0, err
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func newMigrationProvider(db *sql.DB, dialect database.Dialect) (*goose.Provider, error) {
	gd, ok := gooseDialects[dialect]
	if !ok {
		return nil, fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}
	dir, err := fs.Sub(migrations, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("read migrations for %s: %w", dialect, err)
	}
	provider, err := goose.NewProvider(gd, db, dir)
	if err != nil {
		return nil, fmt.Errorf("load migrations for %s: %w", dialect, err)
	}
	return provider, nil
}
